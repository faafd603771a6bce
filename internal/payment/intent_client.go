package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shopfront/internal/domain/model"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// intentサービスへの呼び出し窓口。
type IntentClient interface {
	Create(ctx context.Context, req model.IntentRequest) (model.IntentResponse, error)
}

// HTTPIntentClientはPOSTでintentを作る。
// リトライ（上限つき・バックオフ）とサーキットブレーカー付き。
// ここで失敗してもオーケストレーター側がフォールバックするので、
// エラーはそのまま返してよい。
type HTTPIntentClient struct {
	url     string
	http    *http.Client
	retries int
	backoff time.Duration
	breaker *gobreaker.CircuitBreaker[model.IntentResponse]
	log     *zap.Logger
}

func NewHTTPIntentClient(url string, timeout time.Duration, retries int, log *zap.Logger) *HTTPIntentClient {
	return &HTTPIntentClient{
		url:     url,
		http:    &http.Client{Timeout: timeout},
		retries: retries,
		backoff: 100 * time.Millisecond,
		breaker: gobreaker.NewCircuitBreaker[model.IntentResponse](gobreaker.Settings{
			Name: "payment-intent",
		}),
		log: log,
	}
}

func (c *HTTPIntentClient) Create(ctx context.Context, req model.IntentRequest) (model.IntentResponse, error) {
	return c.breaker.Execute(func() (model.IntentResponse, error) {
		var lastErr error

		for attempt := 1; attempt <= c.retries; attempt++ {
			if attempt > 1 {
				//バックオフしてから再試行（1回ごとに倍）
				wait := c.backoff * time.Duration(1<<(attempt-2))
				select {
				case <-ctx.Done():
					return model.IntentResponse{}, ctx.Err()
				case <-time.After(wait):
				}
			}

			resp, err := c.post(ctx, req)
			if err == nil {
				return resp, nil
			}
			lastErr = err
			c.log.Debug("intent request failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}

		return model.IntentResponse{}, lastErr
	})
}

func (c *HTTPIntentClient) post(ctx context.Context, req model.IntentRequest) (model.IntentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.IntentResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.IntentResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.IntentResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		//非2xxもトランスポート障害と同様にフォールバック経路へ
		return model.IntentResponse{}, fmt.Errorf("intent service status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.IntentResponse{}, err
	}

	var out model.IntentResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return model.IntentResponse{}, err
	}
	if out.ClientSecret == "" {
		return model.IntentResponse{}, fmt.Errorf("intent service returned empty clientSecret")
	}

	return out, nil
}
