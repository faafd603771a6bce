package payment

import (
	"context"
	"strings"

	"shopfront/internal/domain/model"
)

// 確認呼び出しの終端結果。Succeededでなければ分類済みのReasonを持つ。
type ConfirmResult struct {
	Succeeded bool
	Reason    model.FailReason
	Message   string
}

// 支払い収集面。clientSecretと入力済みの支払い情報を渡して
// 成功か分類済みの失敗を受け取る。
type Collector interface {
	Confirm(ctx context.Context, clientSecret string, details model.PaymentDetails) (ConfirmResult, error)
}

// SimulatedCollectorはデモ用の決定的な収集面。
// Stripeのテストカード番号の慣習に合わせる。
type SimulatedCollector struct{}

func NewSimulatedCollector() *SimulatedCollector {
	return &SimulatedCollector{}
}

const (
	cardDeclined     = "4000000000000002"
	cardInsufficient = "4000000000009995"
	cardProviderErr  = "4000000000000119"
)

func (c *SimulatedCollector) Confirm(ctx context.Context, clientSecret string, details model.PaymentDetails) (ConfirmResult, error) {
	if err := ctx.Err(); err != nil {
		return ConfirmResult{}, err
	}

	switch details.Method {
	case model.PaymentMethodCard:
		return confirmCard(details), nil
	case model.PaymentMethodDigitalWallet, model.PaymentMethodRedirect:
		//カード以外はデモでは常に成功
		return ConfirmResult{Succeeded: true}, nil
	default:
		return ConfirmResult{
			Reason:  model.FailReasonValidationError,
			Message: "unknown payment method",
		}, nil
	}
}

func confirmCard(details model.PaymentDetails) ConfirmResult {
	number := strings.ReplaceAll(details.CardNumber, " ", "")

	if len(number) < 13 || len(number) > 19 || !digitsOnly(number) {
		return ConfirmResult{
			Reason:  model.FailReasonValidationError,
			Message: "invalid card number",
		}
	}

	switch number {
	case cardDeclined:
		return ConfirmResult{Reason: model.FailReasonCardError, Message: "card declined"}
	case cardInsufficient:
		return ConfirmResult{Reason: model.FailReasonCardError, Message: "insufficient funds"}
	case cardProviderErr:
		return ConfirmResult{Reason: model.FailReasonUnexpectedError, Message: "processing error"}
	}

	return ConfirmResult{Succeeded: true}
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
