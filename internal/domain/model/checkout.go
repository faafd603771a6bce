package model

// チェックアウト試行の状態。
// Idle → RequestingIntent → CollectingPayment → Confirming → {Succeeded | Failed}
type AttemptStatus string

const (
	AttemptStatusIdle              AttemptStatus = "IDLE"
	AttemptStatusRequestingIntent  AttemptStatus = "REQUESTING_INTENT"
	AttemptStatusCollectingPayment AttemptStatus = "COLLECTING_PAYMENT"
	AttemptStatusConfirming        AttemptStatus = "CONFIRMING"
	AttemptStatusSucceeded         AttemptStatus = "SUCCEEDED"
	AttemptStatusFailed            AttemptStatus = "FAILED"
)

// 終端状態かどうか（新しい試行はStartからやり直す）。
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusSucceeded || s == AttemptStatusFailed
}

func (s AttemptStatus) String() string {
	return string(s)
}

// Failedの分類。
type FailReason string

const (
	FailReasonNone            FailReason = ""
	FailReasonCardError       FailReason = "CARD_ERROR"
	FailReasonValidationError FailReason = "VALIDATION_ERROR"
	FailReasonUnexpectedError FailReason = "UNEXPECTED_ERROR"
	FailReasonUserCancelled   FailReason = "USER_CANCELLED"
)

// 支払い手段の種別。単一のオーケストレーターをこれでパラメータ化する。
type PaymentMethod string

const (
	PaymentMethodCard          PaymentMethod = "CARD"
	PaymentMethodDigitalWallet PaymentMethod = "DIGITAL_WALLET"
	PaymentMethodRedirect      PaymentMethod = "REDIRECT"
)

// ユーザーが入力する支払い情報。手段ごとに必須項目が変わる。
type PaymentDetails struct {
	Method         PaymentMethod `json:"method"`
	Email          string        `json:"email"`
	CardholderName string        `json:"cardholder_name"`
	CardNumber     string        `json:"card_number"`
	Expiry         string        `json:"expiry"`
	CVC            string        `json:"cvc"`
	WalletKind     string        `json:"wallet_kind"`
	ReturnURL      string        `json:"return_url"`
}
