package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"shopfront/internal/domain/model"
	"shopfront/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutUsecase は1回のチェックアウト試行を終端まで進める状態機械。
// セッションごとに同時に1試行だけ。進行中のStartは409で弾く。
// ネットワーク呼び出しはintent作成と確認の2箇所だけで、どちらも
// 試行あたり同時1本。
type CheckoutUsecase struct {
	intents        payment.IntentClient
	collector      payment.Collector
	currency       string
	confirmTimeout time.Duration
	log            *zap.Logger

	mu       sync.Mutex
	attempts map[string]*attempt
}

func NewCheckoutUsecase(
	intents payment.IntentClient,
	collector payment.Collector,
	currency string,
	confirmTimeout time.Duration,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		intents:        intents,
		collector:      collector,
		currency:       currency,
		confirmTimeout: confirmTimeout,
		log:            log,
		attempts:       map[string]*attempt{},
	}
}

// 1試行分の状態。mu保持中にだけ触る。
type attempt struct {
	id           string
	status       model.AttemptStatus
	reason       model.FailReason
	message      string
	clientSecret string
	fallback     bool
	snapshot     model.CartSnapshot
	details      model.PaymentDetails
}

type AttemptOutput struct {
	AttemptID    string `json:"attempt_id"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	Message      string `json:"message,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	Fallback     bool   `json:"fallback"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Start は Idle → RequestingIntent → CollectingPayment。
// intentサービスが落ちていてもフォールバックトークンで先へ進む
// （UX優先の意図的なマスク。ログには必ずfallback=trueで残す）。
func (u *CheckoutUsecase) Start(ctx context.Context, sessionID string, snap model.CartSnapshot) (AttemptOutput, error) {
	if sessionID == "" {
		return AttemptOutput{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if len(snap.Items) == 0 {
		return AttemptOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	u.mu.Lock()
	if cur, ok := u.attempts[sessionID]; ok && !cur.status.IsTerminal() {
		u.mu.Unlock()
		return AttemptOutput{}, NewHTTPError(http.StatusConflict, "checkout already in progress")
	}

	a := &attempt{
		id:       uuid.NewString(),
		status:   model.AttemptStatusRequestingIntent,
		snapshot: snap,
	}
	u.attempts[sessionID] = a
	u.mu.Unlock()

	//intent作成（ロックの外で待つ）
	resp, err := u.intents.Create(ctx, model.IntentRequest{
		Amount:   snap.Total,
		Currency: u.currency,
		Items:    snap.Lines(),
	})

	u.mu.Lock()
	defer u.mu.Unlock()

	//試行が差し替わっていたら応答は捨てる
	if u.attempts[sessionID] != a || a.status != model.AttemptStatusRequestingIntent {
		u.log.Debug("stale intent response discarded",
			zap.String("attempt_id", a.id),
		)
		return u.outputLocked(sessionID), nil
	}

	if err != nil {
		//到達不能でもデモを止めない。本物の認可ではないことを必ず区別する。
		a.clientSecret = "pi_fallback_" + uuid.NewString()
		a.fallback = true
		u.log.Warn("intent request failed, continuing with fallback token",
			zap.String("attempt_id", a.id),
			zap.Bool("fallback", true),
			zap.Int64("amount", snap.Total),
			zap.Error(err),
		)
	} else {
		a.clientSecret = resp.ClientSecret
	}

	a.status = model.AttemptStatusCollectingPayment
	u.log.Info("checkout attempt started",
		zap.String("attempt_id", a.id),
		zap.Int64("amount", snap.Total),
		zap.Bool("fallback", a.fallback),
	)

	return u.toOutput(a), nil
}

// Collect は支払い情報を受け取りローカル検証する。
// 不備があればValidationErrorを返してCollectingPaymentに留まる。
// ネットワーク呼び出しはしない。
func (u *CheckoutUsecase) Collect(ctx context.Context, sessionID string, details model.PaymentDetails) (AttemptOutput, error) {
	if sessionID == "" {
		return AttemptOutput{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	a, ok := u.attempts[sessionID]
	if !ok || a.status != model.AttemptStatusCollectingPayment {
		return AttemptOutput{}, NewHTTPError(http.StatusConflict, "no payment to collect")
	}

	if msg := validateDetails(details); msg != "" {
		//検証失敗は致命的ではない。状態は動かさずその場で再試行できる。
		return u.toOutput(a), NewHTTPError(http.StatusBadRequest, msg)
	}

	a.details = details
	a.status = model.AttemptStatusConfirming

	return u.toOutput(a), nil
}

// Confirm は収集面に確認をかけ、SucceededかFailed（分類つき）に必ず落とす。
// 成功時のカートのクリアと閉じ処理は呼び出し側の責務。
func (u *CheckoutUsecase) Confirm(ctx context.Context, sessionID string) (AttemptOutput, error) {
	if sessionID == "" {
		return AttemptOutput{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	u.mu.Lock()
	a, ok := u.attempts[sessionID]
	if !ok || a.status != model.AttemptStatusConfirming {
		u.mu.Unlock()
		return AttemptOutput{}, NewHTTPError(http.StatusConflict, "nothing to confirm")
	}
	secret := a.clientSecret
	details := a.details
	u.mu.Unlock()

	//確認呼び出しにはハードタイムアウトをかける
	cctx, cancel := context.WithTimeout(ctx, u.confirmTimeout)
	defer cancel()

	res, err := u.collector.Confirm(cctx, secret, details)

	u.mu.Lock()
	defer u.mu.Unlock()

	//Cancel等で試行が動いていたら遅れて来た結果は捨てる
	if u.attempts[sessionID] != a || a.status != model.AttemptStatusConfirming {
		u.log.Debug("stale confirm result discarded",
			zap.String("attempt_id", a.id),
		)
		return u.outputLocked(sessionID), nil
	}

	switch {
	case err != nil:
		a.status = model.AttemptStatusFailed
		a.reason = model.FailReasonUnexpectedError
		a.message = "confirmation failed"
		u.log.Error("confirm call failed",
			zap.String("attempt_id", a.id),
			zap.Error(err),
		)
	case res.Succeeded:
		a.status = model.AttemptStatusSucceeded
		u.log.Info("checkout attempt succeeded",
			zap.String("attempt_id", a.id),
			zap.Int64("amount", a.snapshot.Total),
		)
	default:
		a.status = model.AttemptStatusFailed
		a.reason = res.Reason
		a.message = res.Message
		u.log.Info("checkout attempt failed",
			zap.String("attempt_id", a.id),
			zap.String("reason", string(res.Reason)),
		)
	}

	return u.toOutput(a), nil
}

// Cancel はCollectingPaymentかConfirmingからだけ許す。
// カートには触らない。飛行中の確認結果は後で捨てられる。
func (u *CheckoutUsecase) Cancel(ctx context.Context, sessionID string) (AttemptOutput, error) {
	if sessionID == "" {
		return AttemptOutput{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	a, ok := u.attempts[sessionID]
	if !ok {
		return AttemptOutput{}, NewHTTPError(http.StatusConflict, "nothing to cancel")
	}

	switch a.status {
	case model.AttemptStatusCollectingPayment, model.AttemptStatusConfirming:
	default:
		return AttemptOutput{}, NewHTTPError(http.StatusConflict, "nothing to cancel")
	}

	a.status = model.AttemptStatusFailed
	a.reason = model.FailReasonUserCancelled
	u.log.Info("checkout attempt cancelled",
		zap.String("attempt_id", a.id),
	)

	return u.toOutput(a), nil
}

// Status は現在の試行の状態を返す。試行が無ければIdle。
func (u *CheckoutUsecase) Status(ctx context.Context, sessionID string) (AttemptOutput, error) {
	if sessionID == "" {
		return AttemptOutput{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.outputLocked(sessionID), nil
}

// mu保持前提。
func (u *CheckoutUsecase) outputLocked(sessionID string) AttemptOutput {
	a, ok := u.attempts[sessionID]
	if !ok {
		return AttemptOutput{
			Status:   model.AttemptStatusIdle.String(),
			Currency: u.currency,
		}
	}
	return u.toOutput(a)
}

func (u *CheckoutUsecase) toOutput(a *attempt) AttemptOutput {
	return AttemptOutput{
		AttemptID:    a.id,
		Status:       a.status.String(),
		Reason:       string(a.reason),
		Message:      a.message,
		ClientSecret: a.clientSecret,
		Fallback:     a.fallback,
		Amount:       a.snapshot.Total,
		Currency:     u.currency,
	}
}

var expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
var cvcRe = regexp.MustCompile(`^\d{3,4}$`)

// 手段ごとの必須項目チェック。空文字なら合格。
func validateDetails(d model.PaymentDetails) string {
	if strings.TrimSpace(d.Email) == "" {
		return "email required"
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return "invalid email"
	}

	switch d.Method {
	case model.PaymentMethodCard:
		if strings.TrimSpace(d.CardholderName) == "" {
			return "cardholder name required"
		}
		number := strings.ReplaceAll(d.CardNumber, " ", "")
		if number == "" {
			return "card number required"
		}
		if len(number) < 13 || len(number) > 19 {
			return "invalid card number"
		}
		if !expiryRe.MatchString(d.Expiry) {
			return "invalid expiry"
		}
		if !cvcRe.MatchString(d.CVC) {
			return "invalid cvc"
		}
	case model.PaymentMethodDigitalWallet:
		switch d.WalletKind {
		case "apple_pay", "google_pay":
		default:
			return "invalid wallet kind"
		}
	case model.PaymentMethodRedirect:
		if strings.TrimSpace(d.ReturnURL) == "" {
			return "return url required"
		}
	default:
		return "invalid payment method"
	}

	return ""
}
