package handler

import (
	"fmt"
	"net/http"
	"time"

	"shopfront/internal/domain/model"
	"shopfront/internal/infra/intentstore"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// mockのpayment-intentエンドポイント。
// 本物のバックエンドの代わりにintent IDをでっち上げて返すだけ。
// X-Idempotency-Keyが来たら同じキーには同じintentを返す。
type IntentHandler struct {
	store *intentstore.Store
	log   *zap.Logger
}

// DI（storeはnil可。その場合は毎回新しいintentを作る）
func NewIntentHandler(store *intentstore.Store, log *zap.Logger) *IntentHandler {
	return &IntentHandler{store: store, log: log}
}

func (h *IntentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/create-payment-intent", h.create)
}

type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

func (h *IntentHandler) create(c echo.Context) error {
	var req model.IntentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	}
	if req.Currency == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "currency required"})
	}

	now := time.Now()
	intent := intentstore.Intent{
		ID:           fmt.Sprintf("pi_demo_%d", now.UnixMilli()),
		ClientSecret: fmt.Sprintf("pi_demo_%d_secret_demo", now.UnixMilli()),
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       "requires_payment_method",
		CreatedAt:    now,
	}

	//同じキーのリトライには保存済みのintentをそのまま返す
	if key := c.Request().Header.Get("X-Idempotency-Key"); key != "" && h.store != nil {
		stored, created, err := h.store.Create(key, intent)
		if err != nil {
			h.log.Error("intent store failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		if !created {
			h.log.Debug("intent replayed", zap.String("intent_id", stored.ID))
		}
		intent = stored
	}

	h.log.Info("payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.Int("items", len(req.Items)),
	)

	return c.JSON(http.StatusOK, CreateIntentResponse{ClientSecret: intent.ClientSecret})
}
