// Package account holds the simulated card account state shared by all
// assistant requests.
//
// The store is a single in-memory record seeded at startup; it is owned by the
// application and injected into whatever needs it, never reached through a
// package-level global. There is exactly one per process and every request
// reads and mutates the same record.
package account

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateTransaction is returned by Append when a transaction with the
// same ID already exists. Transaction IDs are unique by invariant.
var ErrDuplicateTransaction = errors.New("duplicate transaction id")

// Transaction is a single card transaction. Immutable once created.
type Transaction struct {
	ID       string `json:"id"`
	Merchant string `json:"merchant"`
	Amount   int64  `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

// Snapshot is a point-in-time copy of the scalar account fields.
type Snapshot struct {
	IsFrozen       bool   `json:"isFrozen"`
	Balance        int64  `json:"balance"`
	Limit          int64  `json:"limit"`
	DueDate        string `json:"dueDate"`
	DeliveryStatus string `json:"deliveryStatus"`
}

// Store is the mutable account record.
//
// All access is serialized by an internal mutex (single-writer discipline), so
// concurrent requests observe a consistent balance instead of losing updates.
type Store struct {
	mu             sync.Mutex
	isFrozen       bool
	balance        int64
	limit          int64
	dueDate        string
	deliveryStatus string
	transactions   []Transaction
}

// NewSeeded creates a Store populated with the demo account: an active card,
// ₹15,000 outstanding against a ₹200,000 limit, a card out for delivery, and
// four recent transactions.
func NewSeeded() *Store {
	return &Store{
		balance:        15000,
		limit:          200000,
		dueDate:        "2025-01-20",
		deliveryStatus: "Out for Delivery",
		transactions: []Transaction{
			{ID: "TX101", Merchant: "Netflix", Amount: 499, Date: "2025-01-10", Category: "Entertainment"},
			{ID: "TX102", Merchant: "Swiggy", Amount: 349, Date: "2025-01-09", Category: "Food"},
			{ID: "TX103", Merchant: "Amazon", Amount: 1999, Date: "2025-01-06", Category: "Shopping"},
			{ID: "TX104", Merchant: "Uber", Amount: 240, Date: "2025-01-05", Category: "Travel"},
		},
	}
}

// SetFrozen sets the frozen flag. Idempotent in both directions.
func (s *Store) SetFrozen(frozen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isFrozen = frozen
}

// IsFrozen reports whether the card is currently frozen.
func (s *Store) IsFrozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFrozen
}

// Balance returns the current outstanding balance.
func (s *Store) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Debit unconditionally subtracts amount from the balance and returns the new
// balance. There is no sign check, no floor at zero, and no comparison against
// the credit limit: a negative amount credits the account and the balance may
// go negative. The upstream contract requires exactly this behavior.
func (s *Store) Debit(amount int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance -= amount
	return s.balance
}

// DeliveryStatus returns the card delivery status string.
func (s *Store) DeliveryStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliveryStatus
}

// Transactions returns a copy of the transaction list in insertion order.
func (s *Store) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Append adds a transaction to the end of the list, preserving ID uniqueness.
// No current action handler appends; the method exists so the invariant is
// enforced in one place if one ever does.
func (s *Store) Append(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.transactions {
		if existing.ID == tx.ID {
			return fmt.Errorf("append %s: %w", tx.ID, ErrDuplicateTransaction)
		}
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

// Snapshot returns a copy of the scalar account fields.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		IsFrozen:       s.isFrozen,
		Balance:        s.balance,
		Limit:          s.limit,
		DueDate:        s.dueDate,
		DeliveryStatus: s.deliveryStatus,
	}
}
