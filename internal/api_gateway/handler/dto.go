package handler

// QuoteRequest represents a request to price a remittance. UseLiveRate asks
// for the live provider chain on top of the configured default.
type QuoteRequest struct {
	Corridor    string `json:"corridor"`
	Amount      string `json:"amount" binding:"required"`
	UseLiveRate bool   `json:"use_live_rate"`
}

// QuoteResponse represents a priced quote in API responses. Money fields are
// decimal strings; nothing here is a float.
type QuoteResponse struct {
	QuoteID       string `json:"quote_id"`
	Corridor      string `json:"corridor"`
	Principal     string `json:"principal"`
	Fee           string `json:"fee"`
	Total         string `json:"total"`
	FxRate        string `json:"fx_rate"`
	LocalEstimate string `json:"local_estimate"`
	RateSource    string `json:"rate_source"`
	ExpiresAt     string `json:"expires_at"`
}

// RateResponse represents an indicative corridor rate in API responses
type RateResponse struct {
	Corridor string `json:"corridor"`
	FxRate   string `json:"fx_rate"`
	Source   string `json:"source"`
	QuotedAt string `json:"quoted_at"`
}

// CreateIntentRequest represents a request to lock a quote into an intent
type CreateIntentRequest struct {
	ReceiverKind       string `json:"receiver_kind" binding:"required,oneof=PHONE ADDRESS NAME"`
	ReceiverIdentifier string `json:"receiver_identifier" binding:"required"`
	Corridor           string `json:"corridor"`
	Amount             string `json:"amount" binding:"required"`
}

// IntentResponse represents a remittance intent in API responses
type IntentResponse struct {
	ID                  string `json:"id"`
	SenderID            string `json:"sender_id"`
	ReceiverKind        string `json:"receiver_kind"`
	ReceiverIdentifier  string `json:"receiver_identifier"`
	Corridor            string `json:"corridor"`
	Principal           string `json:"principal"`
	Fee                 string `json:"fee"`
	Status              string `json:"status"`
	SettlementReference string `json:"settlement_reference,omitempty"`
	ExpiresAt           string `json:"expires_at"`
	CreatedAt           string `json:"created_at"`
}

// CreateIntentResponse pairs the created intent with the quote locked into it
type CreateIntentResponse struct {
	Intent IntentResponse `json:"intent"`
	Quote  QuoteResponse  `json:"quote"`
}

// ConfirmRequest represents a request to confirm an intent against a
// settlement reference. SenderAddress is the wallet the caller claims sent
// the transfer; optional, the sender id stands in when absent.
type ConfirmRequest struct {
	IntentID            string `json:"intent_id" binding:"required,uuid"`
	SettlementReference string `json:"settlement_reference" binding:"required"`
	SenderAddress       string `json:"sender_address"`
}

// FraudFlagResponse represents an advisory fraud flag in API responses
type FraudFlagResponse struct {
	RuleName string `json:"rule_name"`
	Severity string `json:"severity"`
	Score    int    `json:"score"`
	Note     string `json:"note"`
}

// ReceiptResponse represents a settlement receipt in API responses
type ReceiptResponse struct {
	ID                  string `json:"id"`
	IntentID            string `json:"intent_id"`
	SenderID            string `json:"sender_id"`
	ReceiverAddress     string `json:"receiver_address"`
	TokenIdentifier     string `json:"token_identifier,omitempty"`
	Principal           string `json:"principal"`
	Fee                 string `json:"fee"`
	Corridor            string `json:"corridor"`
	SettlementTimestamp string `json:"settlement_timestamp"`
	FxRateAtSettlement  string `json:"fx_rate_at_settlement"`
	LocalAmountEstimate string `json:"local_amount_estimate"`
	ShareToken          string `json:"share_token,omitempty"`
	ShareTokenExpiresAt string `json:"share_token_expires_at,omitempty"`
	CreatedAt           string `json:"created_at"`
}

// ConfirmResponse pairs the receipt with the flags raised during confirmation
type ConfirmResponse struct {
	Receipt ReceiptResponse     `json:"receipt"`
	Flags   []FraudFlagResponse `json:"flags,omitempty"`
}

// RemittanceResponse represents an intent plus its receipt once confirmed
type RemittanceResponse struct {
	Intent  IntentResponse   `json:"intent"`
	Receipt *ReceiptResponse `json:"receipt,omitempty"`
}

// InitiateCashoutRequest represents a request to queue the local payout leg
type InitiateCashoutRequest struct {
	IntentID     string `json:"intent_id" binding:"required,uuid"`
	Method       string `json:"method" binding:"required,oneof=UPI BANK"`
	PayoutTarget string `json:"payout_target" binding:"required"`
}

// CashoutEventResponse represents one step of the payout trail
type CashoutEventResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note"`
}

// CashoutResponse represents a cash-out in API responses
type CashoutResponse struct {
	ID           string                 `json:"id"`
	IntentID     string                 `json:"intent_id"`
	Reference    string                 `json:"reference"`
	Method       string                 `json:"method"`
	PayoutTarget string                 `json:"payout_target"`
	Status       string                 `json:"status"`
	Events       []CashoutEventResponse `json:"events"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// CashoutStatusResponse pairs the payout trail with a summary of the
// remittance it settles
type CashoutStatusResponse struct {
	Cashout    CashoutResponse `json:"cashout"`
	Remittance IntentResponse  `json:"remittance"`
}
