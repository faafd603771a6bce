package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"shopfront/internal/cart"
	"shopfront/internal/config"
	"shopfront/internal/domain/model"
	infraRepo "shopfront/internal/infra/repository"
	"shopfront/internal/payment"
	"shopfront/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

type CartItemDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartDTO struct {
	Items  []CartItemDTO `json:"items"`
	IsOpen bool          `json:"is_open"`
	Total  int64         `json:"total"`
}

type AttemptDTO struct {
	AttemptID    string `json:"attempt_id"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	ClientSecret string `json:"client_secret"`
	Fallback     bool   `json:"fallback"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func mustDecodeCart(t *testing.T, body []byte) CartDTO {
	t.Helper()
	var v CartDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(CartDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeAttempt(t *testing.T, body []byte) AttemptDTO {
	t.Helper()
	var v AttemptDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(AttemptDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

// テスト用のintentクライアント。即座に固定secretを返す
type stubIntentClient struct {
	secret string
	err    error
}

func (s *stubIntentClient) Create(ctx context.Context, req model.IntentRequest) (model.IntentResponse, error) {
	if s.err != nil {
		return model.IntentResponse{}, s.err
	}
	return model.IntentResponse{ClientSecret: s.secret}, nil
}

// アプリ一式をhttptestで立てる
func newTestServer(t *testing.T, intents payment.IntentClient) *TestClient {
	t.Helper()

	cfg := config.Config{
		Port:          "0",
		GoEnv:         "dev",
		SessionSecret: "test_secret",
		Currency:      "eur",
	}

	productRepo := infraRepo.NewProductMemoryRepository()
	if err := infraRepo.EnsureSeeded(context.Background(), productRepo); err != nil {
		t.Fatalf("EnsureSeeded failed: %v", err)
	}

	cartStore := cart.NewStore()
	log := zap.NewNop()

	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(intents, payment.NewSimulatedCollector(), cfg.Currency, time.Second, log)

	e := echo.New()
	productH := NewProductHandler(productUC)
	cartH := NewCartHandler(cartUC)
	checkoutH := NewCheckoutHandler(checkoutUC, cartStore)

	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, cfg)
	checkoutH.RegisterRoutes(e, cfg)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &TestClient{
		BaseURL: srv.URL,
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

func addToCart(t *testing.T, c *TestClient, ctx context.Context, productID string) CartDTO {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/cart", mustMarshal(t, map[string]string{"product_id": productID}))
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecodeCart(t, body)
}

func cardBody(t *testing.T) []byte {
	t.Helper()
	return mustMarshal(t, map[string]string{
		"method":          "CARD",
		"email":           "shopper@example.com",
		"cardholder_name": "John Doe",
		"card_number":     "4242 4242 4242 4242",
		"expiry":          "12/30",
		"cvc":             "123",
	})
}

func Test_Checkout_FullFlow_Success(t *testing.T) {
	c := newTestServer(t, &stubIntentClient{secret: "pi_demo_1_secret_demo"})
	ctx := context.Background()

	//GET /cart 初回は空であるか
	resp, body := c.doJSON(ctx, t, http.MethodGet, "/cart", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cartOut := mustDecodeCart(t, body)
	if len(cartOut.Items) != 0 || cartOut.Total != 0 {
		t.Fatalf("expected empty cart: body=%s", string(body))
	}

	//A×2 + B×1 = 10997
	addToCart(t, c, ctx, "posture-corrector-pro")
	addToCart(t, c, ctx, "posture-corrector-pro")
	cartOut = addToCart(t, c, ctx, "ergonomic-seat-cushion")
	if cartOut.Total != 10997 {
		t.Fatalf("total=%d want=10997", cartOut.Total)
	}
	if len(cartOut.Items) != 2 {
		t.Fatalf("items=%d want=2", len(cartOut.Items))
	}

	//カートを開く
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/cart/toggle", nil)
	requireStatus(t, resp, http.StatusOK, body)
	if !mustDecodeCart(t, body).IsOpen {
		t.Fatalf("cart should be open: body=%s", string(body))
	}

	//start → collect → confirm
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout", nil)
	requireStatus(t, resp, http.StatusOK, body)
	att := mustDecodeAttempt(t, body)
	if att.Status != "COLLECTING_PAYMENT" || att.ClientSecret == "" || att.Fallback {
		t.Fatalf("unexpected attempt: %+v", att)
	}
	if att.Amount != 10997 {
		t.Fatalf("amount=%d want=10997", att.Amount)
	}

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/payment", cardBody(t))
	requireStatus(t, resp, http.StatusOK, body)
	if got := mustDecodeAttempt(t, body).Status; got != "CONFIRMING" {
		t.Fatalf("status=%s want=CONFIRMING", got)
	}

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/confirm", nil)
	requireStatus(t, resp, http.StatusOK, body)
	if got := mustDecodeAttempt(t, body).Status; got != "SUCCEEDED" {
		t.Fatalf("status=%s want=SUCCEEDED", got)
	}

	//成功後はカートが空で閉じている
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/cart", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cartOut = mustDecodeCart(t, body)
	if len(cartOut.Items) != 0 || cartOut.Total != 0 || cartOut.IsOpen {
		t.Fatalf("cart should be cleared and closed: body=%s", string(body))
	}
}

// intentサービス到達不能でもチェックアウトは始まる（フォールバック）
func Test_Checkout_IntentUnreachable_Fallback(t *testing.T) {
	//実クライアントを死んだURLに向ける
	intents := payment.NewHTTPIntentClient("http://127.0.0.1:1/api/create-payment-intent", 200*time.Millisecond, 1, zap.NewNop())
	c := newTestServer(t, intents)
	ctx := context.Background()

	addToCart(t, c, ctx, "posture-corrector-pro")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/checkout", nil)
	requireStatus(t, resp, http.StatusOK, body)
	att := mustDecodeAttempt(t, body)
	if att.Status != "COLLECTING_PAYMENT" {
		t.Fatalf("status=%s want=COLLECTING_PAYMENT", att.Status)
	}
	if !att.Fallback || att.ClientSecret == "" {
		t.Fatalf("expected fallback token: %+v", att)
	}
}

func Test_Checkout_ValidationError_StaysCollecting(t *testing.T) {
	c := newTestServer(t, &stubIntentClient{secret: "sec"})
	ctx := context.Background()

	addToCart(t, c, ctx, "posture-corrector-pro")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/checkout", nil)
	requireStatus(t, resp, http.StatusOK, body)

	//cardholder_nameが無い
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/payment", mustMarshal(t, map[string]string{
		"method":      "CARD",
		"email":       "shopper@example.com",
		"card_number": "4242424242424242",
		"expiry":      "12/30",
		"cvc":         "123",
	}))
	requireStatus(t, resp, http.StatusBadRequest, body)

	//状態はCollectingPaymentのまま
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/checkout", nil)
	requireStatus(t, resp, http.StatusOK, body)
	if got := mustDecodeAttempt(t, body).Status; got != "COLLECTING_PAYMENT" {
		t.Fatalf("status=%s want=COLLECTING_PAYMENT", got)
	}
}

// キャンセルしてもカートは触らない
func Test_Checkout_Cancel_KeepsCart(t *testing.T) {
	c := newTestServer(t, &stubIntentClient{secret: "sec"})
	ctx := context.Background()

	addToCart(t, c, ctx, "posture-corrector-pro")
	addToCart(t, c, ctx, "ergonomic-seat-cushion")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/checkout", nil)
	requireStatus(t, resp, http.StatusOK, body)
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/payment", cardBody(t))
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/cancel", nil)
	requireStatus(t, resp, http.StatusOK, body)
	att := mustDecodeAttempt(t, body)
	if att.Status != "FAILED" || att.Reason != "USER_CANCELLED" {
		t.Fatalf("unexpected attempt: %+v", att)
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/cart", nil)
	requireStatus(t, resp, http.StatusOK, body)
	cartOut := mustDecodeCart(t, body)
	if len(cartOut.Items) != 2 || cartOut.Total != 7998 {
		t.Fatalf("cart should be unchanged: body=%s", string(body))
	}
}

// 拒否カードではFAILED/CARD_ERRORになりカートは残る
func Test_Checkout_CardDeclined(t *testing.T) {
	c := newTestServer(t, &stubIntentClient{secret: "sec"})
	ctx := context.Background()

	addToCart(t, c, ctx, "posture-corrector-pro")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/checkout", nil)
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/payment", mustMarshal(t, map[string]string{
		"method":          "CARD",
		"email":           "shopper@example.com",
		"cardholder_name": "John Doe",
		"card_number":     "4000000000000002",
		"expiry":          "12/30",
		"cvc":             "123",
	}))
	requireStatus(t, resp, http.StatusOK, body)

	resp, body = c.doJSON(ctx, t, http.MethodPost, "/checkout/confirm", nil)
	requireStatus(t, resp, http.StatusOK, body)
	att := mustDecodeAttempt(t, body)
	if att.Status != "FAILED" || att.Reason != "CARD_ERROR" {
		t.Fatalf("unexpected attempt: %+v", att)
	}

	resp, body = c.doJSON(ctx, t, http.MethodGet, "/cart", nil)
	requireStatus(t, resp, http.StatusOK, body)
	if got := mustDecodeCart(t, body).Total; got != 2999 {
		t.Fatalf("cart should be unchanged: total=%d", got)
	}
}

func Test_Checkout_EmptyCart_Rejected(t *testing.T) {
	c := newTestServer(t, &stubIntentClient{secret: "sec"})
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/checkout", nil)
	requireStatus(t, resp, http.StatusBadRequest, body)
}
