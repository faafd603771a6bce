package handler

import (
	"net/http"

	"shopfront/internal/cart"
	"shopfront/internal/config"
	"shopfront/internal/domain/model"
	"shopfront/internal/middleware"
	"shopfront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP。オーケストレーター本体はカートに触らないので、
// 成功後のクリアと閉じ処理はここ（呼び出し側）でやる。
type CheckoutHandler struct {
	uc    *usecase.CheckoutUsecase
	store *cart.Store
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase, store *cart.Store) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, store: store}
}

type CollectPaymentRequest struct {
	Method         string `json:"method"`
	Email          string `json:"email"`
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVC            string `json:"cvc"`
	WalletKind     string `json:"wallet_kind"`
	ReturnURL      string `json:"return_url"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/checkout")
	g.Use(middleware.GuestSession(cfg))

	g.GET("", h.status)
	g.POST("", h.start)
	g.POST("/payment", h.collect)
	g.POST("/confirm", h.confirm)
	g.POST("/cancel", h.cancel)
}

func (h *CheckoutHandler) status(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	out, err := h.uc.Status(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// カートのスナップショットを読んで試行を開始する。
func (h *CheckoutHandler) start(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	snap := h.store.Snapshot(sessionID)

	out, err := h.uc.Start(c.Request().Context(), sessionID, snap)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) collect(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	var req CollectPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Collect(c.Request().Context(), sessionID, model.PaymentDetails{
		Method:         model.PaymentMethod(req.Method),
		Email:          req.Email,
		CardholderName: req.CardholderName,
		CardNumber:     req.CardNumber,
		Expiry:         req.Expiry,
		CVC:            req.CVC,
		WalletKind:     req.WalletKind,
		ReturnURL:      req.ReturnURL,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) confirm(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	out, err := h.uc.Confirm(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	//成功したらカートを空にして閉じる（1つの論理的な後条件）
	if out.Status == model.AttemptStatusSucceeded.String() {
		h.store.Clear(sessionID)
		if h.store.Snapshot(sessionID).IsOpen {
			h.store.ToggleVisibility(sessionID)
		}
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) cancel(c echo.Context) error {
	sessionID, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
	}

	out, err := h.uc.Cancel(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
