// Package fraud scores a confirmed remittance against the sender's history.
// Flags are advisory: nothing here blocks settlement, and a scoring failure
// degrades to "no flags" rather than failing the confirmation.
package fraud

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/remitchain-core/internal/domain/intent"
	"github.com/remitchain-core/internal/domain/receipt"
	"github.com/remitchain-core/internal/domain/shared"
)

// Rule names
const (
	RuleNewSender       = "NEW_SENDER"
	RuleNewReceiver     = "NEW_RECEIVER"
	RuleAmountAboveP95  = "AMOUNT_ABOVE_P95"
	RuleHighFrequency   = "HIGH_FREQUENCY"
	RuleUnusualCorridor = "UNUSUAL_CORRIDOR"
)

const (
	p95MinHistory      = 5
	corridorMinHistory = 3
	frequencyThreshold = 3
	frequencyWindow    = 60 * time.Second
)

// Engine evaluates the fraud rules over a supplied history snapshot. It is
// pure: no storage access, no clock access beyond the injected now.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a fraud scoring engine
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Score evaluates every rule independently and returns the flags that fired.
// history holds the sender's recent intents of any status, newest first;
// rules 1-3 and 5 consider only confirmed entries, while the frequency rule
// counts all of them. ReceiptID on the returned flags is left for the caller.
func (e *Engine) Score(senderID, receiverIdentifier string, principal decimal.Decimal, corridor string, history []intent.HistoryEntry, now time.Time) []receipt.FraudFlag {
	var flags []receipt.FraudFlag

	var confirmed []intent.HistoryEntry
	for _, h := range history {
		if h.Status == shared.IntentStatusConfirmed {
			confirmed = append(confirmed, h)
		}
	}

	// Rule 1: first ever confirmed transaction from this sender.
	if len(confirmed) == 0 {
		flags = append(flags, receipt.FraudFlag{
			RuleName: RuleNewSender,
			Severity: shared.FlagSeverityMedium,
			Score:    50,
			Note:     "First transaction from this sender",
		})
	}

	// Rule 2: sender has history but never paid this receiver.
	if len(confirmed) > 0 && !sentToReceiver(confirmed, receiverIdentifier) {
		flags = append(flags, receipt.FraudFlag{
			RuleName: RuleNewReceiver,
			Severity: shared.FlagSeverityMedium,
			Score:    40,
			Note:     "First transaction to this receiver",
		})
	}

	// Rule 3: amount exceeds the nearest-rank P95 of confirmed history.
	if len(confirmed) >= p95MinHistory {
		threshold := percentile95(confirmed)
		if principal.GreaterThan(threshold) {
			flags = append(flags, receipt.FraudFlag{
				RuleName: RuleAmountAboveP95,
				Severity: shared.FlagSeverityHigh,
				Score:    80,
				Note:     fmt.Sprintf("Amount %s exceeds P95 (%s) of sender history", principal.String(), threshold.StringFixed(2)),
			})
		}
	}

	// Rule 4: >=3 intents of any status in the trailing 60 seconds.
	if recent := countRecent(history, now); recent >= frequencyThreshold {
		flags = append(flags, receipt.FraudFlag{
			RuleName: RuleHighFrequency,
			Severity: shared.FlagSeverityHigh,
			Score:    90,
			Note:     fmt.Sprintf("%d transactions in last minute", recent),
		})
	}

	// Rule 5: corridor the sender has never used, when a clear habit exists.
	if len(confirmed) >= corridorMinHistory {
		usual, seen := dominantCorridor(confirmed)
		if corridor != usual && seen[corridor] == 0 {
			flags = append(flags, receipt.FraudFlag{
				RuleName: RuleUnusualCorridor,
				Severity: shared.FlagSeverityMedium,
				Score:    60,
				Note:     fmt.Sprintf("Corridor %s is unusual; sender typically uses %s", corridor, usual),
			})
		}
	}

	if len(flags) > 0 {
		e.logger.Info("Fraud rules fired",
			"sender_id", senderID,
			"flag_count", len(flags),
		)
	}

	return flags
}

func sentToReceiver(confirmed []intent.HistoryEntry, receiver string) bool {
	for _, h := range confirmed {
		if strings.EqualFold(h.Receiver, receiver) {
			return true
		}
	}
	return false
}

// percentile95 computes the nearest-rank 95th percentile: index
// floor(n*0.95) into the ascending-sorted amounts
func percentile95(confirmed []intent.HistoryEntry) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(confirmed))
	for i, h := range confirmed {
		amounts[i] = h.Amount
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })

	idx := int(float64(len(amounts)) * 0.95)
	if idx >= len(amounts) {
		idx = len(amounts) - 1
	}
	return amounts[idx]
}

// countRecent counts intents inside the frequency window; the window start is
// inclusive, so an intent created exactly one window ago still counts
func countRecent(history []intent.HistoryEntry, now time.Time) int {
	cutoff := now.Add(-frequencyWindow)
	count := 0
	for _, h := range history {
		if !h.CreatedAt.Before(cutoff) && !h.CreatedAt.After(now) {
			count++
		}
	}
	return count
}

// dominantCorridor returns the sender's most-used corridor, ties broken by
// first encounter, plus the full per-corridor counts
func dominantCorridor(confirmed []intent.HistoryEntry) (string, map[string]int) {
	seen := make(map[string]int, len(confirmed))
	var order []string
	for _, h := range confirmed {
		if seen[h.Corridor] == 0 {
			order = append(order, h.Corridor)
		}
		seen[h.Corridor]++
	}

	best := order[0]
	for _, c := range order[1:] {
		if seen[c] > seen[best] {
			best = c
		}
	}
	return best, seen
}
