package shared

import "time"

// QuoteTTL is the single rate-lock window used everywhere: a quote is honored
// for this long, and an intent created against it expires after the same
// duration. expiresAt is exclusive (now == expiresAt counts as expired).
const QuoteTTL = 90 * time.Second

// ShareTokenTTL is how long a receipt share token grants read access.
const ShareTokenTTL = 30 * 24 * time.Hour

// IntentStatus defines remittance intent lifecycle states
type IntentStatus string

const (
	IntentStatusCreated   IntentStatus = "CREATED"
	IntentStatusConfirmed IntentStatus = "ONCHAIN_CONFIRMED"
	IntentStatusFailed    IntentStatus = "FAILED"
)

// IsTerminal reports whether no further transition is legal from the status
func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusConfirmed || s == IntentStatusFailed
}

// ReceiverKind tags which form of receiver identifier an intent carries
type ReceiverKind string

const (
	ReceiverKindPhone   ReceiverKind = "PHONE"
	ReceiverKindAddress ReceiverKind = "ADDRESS"
	ReceiverKindName    ReceiverKind = "NAME"
)

// CashoutStatus defines cash-out progression states
type CashoutStatus string

const (
	CashoutStatusQueued     CashoutStatus = "QUEUED"
	CashoutStatusProcessing CashoutStatus = "PROCESSING"
	CashoutStatusPaid       CashoutStatus = "PAID"
	CashoutStatusFailed     CashoutStatus = "FAILED"
)

// IsTerminal reports whether the cash-out has resolved
func (s CashoutStatus) IsTerminal() bool {
	return s == CashoutStatusPaid || s == CashoutStatusFailed
}

// CashoutMethod defines supported local payout rails
type CashoutMethod string

const (
	CashoutMethodUPI  CashoutMethod = "UPI"
	CashoutMethodBank CashoutMethod = "BANK"
)

// FlagSeverity grades an advisory fraud flag
type FlagSeverity string

const (
	FlagSeverityLow    FlagSeverity = "LOW"
	FlagSeverityMedium FlagSeverity = "MEDIUM"
	FlagSeverityHigh   FlagSeverity = "HIGH"
)

// RateSource identifies where a quote's exchange rate came from
type RateSource string

const (
	RateSourceConfig RateSource = "config"
	RateSourceLive   RateSource = "live"
)

// DefaultCorridor is the currency-pair route assumed when a request omits one
const DefaultCorridor = "USDC-INR"
