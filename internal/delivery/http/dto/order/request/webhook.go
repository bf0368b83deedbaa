package request

// HeliusWebhookPayload is the enhanced-webhook body Helius posts on activity
// against the watched wallet. Amounts in nativeTransfers are lamports.
type HeliusWebhookPayload []HeliusTransaction

type HeliusTransaction struct {
	Signature       string                 `json:"signature"`
	Timestamp       int64                  `json:"timestamp"`
	TransactionErr  any                    `json:"transactionError"`
	NativeTransfers []HeliusNativeTransfer `json:"nativeTransfers"`
}

type HeliusNativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}
