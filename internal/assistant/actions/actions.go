// Package actions implements the simulated account operations behind the
// assistant's intents.
//
// Every operation sleeps for an operation-specific delay before touching the
// account store, emulating backend latency. The delays scale with a
// configurable unit so tests can shrink them without changing the ratios.
// Operations never fail and always run to completion: there is no cancellation
// path, matching the backend being simulated.
package actions

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/account"
)

// DefaultLatencyUnit yields the original operation delays (500–1200 ms).
const DefaultLatencyUnit = 100 * time.Millisecond

// Per-operation delay factors, in latency units.
const (
	delayFreeze       = 8
	delayUnfreeze     = 8
	delayDelivery     = 5
	delayTransactions = 5
	delayPayBill      = 10
	delayEMI          = 12
	delayStatement    = 7
	delayDispute      = 10
)

// Fixed values returned by operations that do not derive them from state.
const (
	courierName      = "BlueDart"
	courierETA       = "Today 6 PM"
	emiRateLabel     = "15% p.a."
	statementURLBase = "https://onecard.app/statement/"
	ticketPrefix     = "TKT-"
	defaultTenure    = 6
)

// StatusResult reports the card status after a freeze or unfreeze.
type StatusResult struct {
	Status string `json:"status"`
}

// DeliveryResult reports where the physical card is.
type DeliveryResult struct {
	Status  string `json:"status"`
	Courier string `json:"courier"`
	ETA     string `json:"eta"`
}

// PaymentResult reports the balance after a bill payment.
type PaymentResult struct {
	Success    bool  `json:"success"`
	NewBalance int64 `json:"newBalance"`
}

// EMIResult is the outcome of an EMI conversion quote.
type EMIResult struct {
	EMI           int64  `json:"emi"`
	TotalInterest int64  `json:"totalInterest"`
	Tenure        int    `json:"tenure"`
	Rate          string `json:"rate"`
}

// StatementResult points at a generated statement document.
type StatementResult struct {
	URL    string `json:"url"`
	Period string `json:"period"`
}

// DisputeResult is the ticket opened for a transaction dispute.
type DisputeResult struct {
	TicketID string `json:"ticketId"`
	TxnID    string `json:"txnId"`
	Reason   string `json:"reason"`
}

// Service executes account operations against an injected store.
type Service struct {
	store *account.Store
	unit  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLatencyUnit overrides the latency unit used to scale the simulated
// operation delays. Values <= 0 fall back to DefaultLatencyUnit.
func WithLatencyUnit(unit time.Duration) Option {
	return func(s *Service) {
		if unit > 0 {
			s.unit = unit
		}
	}
}

// New creates a Service operating on store.
func New(store *account.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		unit:  DefaultLatencyUnit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// sleep blocks for the given number of latency units. Deliberately ignores
// context cancellation: an invoked operation always completes.
func (s *Service) sleep(units int) {
	time.Sleep(time.Duration(units) * s.unit)
}

// FreezeCard freezes the card. Idempotent if already frozen.
func (s *Service) FreezeCard(ctx context.Context) StatusResult {
	s.sleep(delayFreeze)
	s.store.SetFrozen(true)
	return StatusResult{Status: "frozen"}
}

// UnfreezeCard reactivates the card. Idempotent if already active.
func (s *Service) UnfreezeCard(ctx context.Context) StatusResult {
	s.sleep(delayUnfreeze)
	s.store.SetFrozen(false)
	return StatusResult{Status: "active"}
}

// CheckDeliveryStatus returns the delivery status from state plus the fixed
// courier name and ETA, which are not derived from state.
func (s *Service) CheckDeliveryStatus(ctx context.Context) DeliveryResult {
	s.sleep(delayDelivery)
	return DeliveryResult{
		Status:  s.store.DeliveryStatus(),
		Courier: courierName,
		ETA:     courierETA,
	}
}

// GetTransactions returns the full transaction list in insertion order. No
// pagination, no filtering.
func (s *Service) GetTransactions(ctx context.Context) []account.Transaction {
	s.sleep(delayTransactions)
	return s.store.Transactions()
}

// PayBill subtracts amount from the balance and returns the new balance.
// The amount is applied as-is: no sign check, no floor at zero, no comparison
// against the credit limit. Callers depend on this exact behavior.
func (s *Service) PayBill(ctx context.Context, amount int64) PaymentResult {
	s.sleep(delayPayBill)
	return PaymentResult{
		Success:    true,
		NewBalance: s.store.Debit(amount),
	}
}

// ConvertToEMI quotes an EMI plan for amount over tenure months at a flat
// 15% p.a. Pure calculation; no state is touched. A non-positive tenure is
// treated as the default 6 months to keep the arithmetic finite.
func (s *Service) ConvertToEMI(ctx context.Context, amount int64, tenure int) EMIResult {
	s.sleep(delayEMI)
	if tenure <= 0 {
		tenure = defaultTenure
	}
	interest := float64(amount) * 0.15 * (float64(tenure) / 12)
	emi := (float64(amount) + interest) / float64(tenure)
	return EMIResult{
		EMI:           int64(math.Round(emi)),
		TotalInterest: int64(math.Round(interest)),
		Tenure:        tenure,
		Rate:          emiRateLabel,
	}
}

// GenerateStatement returns the download URL for the given month's statement.
// The URL is a fixed template; no document is generated.
func (s *Service) GenerateStatement(ctx context.Context, month string) StatementResult {
	s.sleep(delayStatement)
	return StatementResult{
		URL:    statementURLBase + month + ".pdf",
		Period: month,
	}
}

// RaiseDispute opens a dispute ticket for the given transaction. The ticket
// is not persisted and duplicates are not detected; only the generated ticket
// ID leaves this call.
func (s *Service) RaiseDispute(ctx context.Context, txnID, reason string) DisputeResult {
	s.sleep(delayDispute)
	return DisputeResult{
		TicketID: ticketPrefix + strconv.Itoa(rand.IntN(99999)),
		TxnID:    txnID,
		Reason:   reason,
	}
}
