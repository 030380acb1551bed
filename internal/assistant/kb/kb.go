// Package kb implements the knowledge-base lookup consulted before intent
// dispatch.
//
// A knowledge base is an ordered list of (key, answer) pairs. Lookup scans the
// entries in declaration order and returns the answer of the first key that
// occurs anywhere in the utterance as a substring. First-match-wins by
// declaration order is a hard contract: a later key is never reached once an
// earlier one hits, even when the later key would be the better fit. Lookup
// has no side effects.
package kb

import (
	"fmt"
	"strings"
)

// Entry is a single knowledge-base item.
type Entry struct {
	// Key is the phrase fragment matched against the utterance. Matching is
	// case-insensitive substring containment.
	Key string `yaml:"key" json:"key"`

	// Answer is the canned reply returned on a hit.
	Answer string `yaml:"answer" json:"answer"`
}

// KnowledgeBase holds the ordered entries.
type KnowledgeBase struct {
	entries []Entry
}

// New creates a KnowledgeBase from the given entries, preserving their order.
// Keys are normalized to lowercase. Empty keys or answers are rejected.
func New(entries []Entry) (*KnowledgeBase, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("kb: at least one entry is required")
	}
	normalized := make([]Entry, len(entries))
	for i, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Key))
		if key == "" {
			return nil, fmt.Errorf("kb: entries[%d]: key must not be empty", i)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("kb: entries[%d] (%q): answer must not be empty", i, e.Key)
		}
		normalized[i] = Entry{Key: key, Answer: e.Answer}
	}
	return &KnowledgeBase{entries: normalized}, nil
}

// Default returns the built-in knowledge base covering common card questions
// that do not map to an account action.
func Default() *KnowledgeBase {
	knowledgeBase, err := New(defaultEntries)
	if err != nil {
		// defaultEntries is compile-time data; a validation failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return knowledgeBase
}

// defaultEntries is scanned in order; keep the more specific phrases first.
var defaultEntries = []Entry{
	{Key: "credit limit", Answer: "Your total credit limit is ₹200,000. You can view your available limit on the card summary screen."},
	{Key: "due date", Answer: "Your next bill is due on 2025-01-20. Pay before the due date to avoid late fees."},
	{Key: "annual fee", Answer: "OneCard has no annual fee and no joining fee. It is free for life."},
	{Key: "joining fee", Answer: "There is no joining fee for OneCard."},
	{Key: "interest rate", Answer: "Interest on revolving credit is charged at 15% p.a. Converting big purchases to EMI uses the same rate."},
	{Key: "reward", Answer: "You earn 1 reward point for every ₹50 spent. Points never expire and are credited with every billing cycle."},
	{Key: "cashback", Answer: "OneCard offers rewards points instead of cashback. Points can be redeemed directly in the app."},
	{Key: "lounge", Answer: "Your card includes complimentary domestic airport lounge access, up to 2 visits per quarter."},
	{Key: "customer care", Answer: "You can reach OneCard support 24x7 from the Help section of the app, or by email at help@onecard.app."},
	{Key: "contact support", Answer: "You can reach OneCard support 24x7 from the Help section of the app, or by email at help@onecard.app."},
}

// Lookup scans the entries in declaration order and returns the answer for
// the first key contained in message. The message must already be normalized
// to lowercase by the caller. The second return is false when no key matches.
func (kb *KnowledgeBase) Lookup(message string) (string, bool) {
	for _, e := range kb.entries {
		if strings.Contains(message, e.Key) {
			return e.Answer, true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}
