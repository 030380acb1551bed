// Package dispatch classifies a user utterance and routes it to the matching
// account operation.
//
// Classification is fully deterministic: a knowledge-base lookup short-circuits
// everything, then an ordered table of (predicate, extractor, handler) rules is
// scanned top to bottom and the first match fires. No LLM is involved in
// control decisions. Parameter extraction is a deliberately minimal grammar
// (first digit run, all digit runs, first alphabetic run, and a fixed
// transaction-id token); the exact extraction and defaulting rules are part
// of the compatibility contract.
package dispatch

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/account"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/actions"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/events"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/kb"
)

// Intent names. The non-empty ones double as the envelope's action tag.
const (
	IntentFreeze       = "freeze"
	IntentUnfreeze     = "unfreeze"
	IntentDelivery     = "delivery"
	IntentTransactions = "transactions"
	IntentPayBill      = "payBill"
	IntentEMI          = "emi"
	IntentStatement    = "statement"
	IntentDispute      = "dispute"
	IntentKB           = "kb"
	IntentFallback     = "fallback"
)

// disputeReason is the fixed reason attached to every dispute; the utterance's
// own wording is deliberately ignored.
const disputeReason = "user reported an issue"

// fallbackReply is returned when no knowledge-base key or intent rule matches.
const fallbackReply = "I didn’t understand that. Can you rephrase?"

// Defaults applied when an utterance omits a parameter.
const (
	defaultEMIAmount = 1000
	defaultEMITenure = 6
	defaultMonth     = "January"
)

var (
	digitsRe = regexp.MustCompile(`\d+`)
	alphaRe  = regexp.MustCompile(`[a-zA-Z]+`)
	txnRe    = regexp.MustCompile(`tx\d+`)
)

// StateDelta is the state change a caller must mirror after an action.
type StateDelta struct {
	// Status is "frozen" or "active" after a freeze/unfreeze.
	Status string `json:"status,omitempty"`
	// NewBalance is set after a bill payment. Pointer so a zero balance is
	// still serialized.
	NewBalance *int64 `json:"newBalance,omitempty"`
}

// Envelope is the structured response returned to the caller.
type Envelope struct {
	// Reply is the human-readable sentence.
	Reply string `json:"reply"`
	// Action is the intent that fired; absent for KB hits and the fallback.
	Action string `json:"action,omitempty"`
	// List carries the transaction listing; present only for that intent.
	List []account.Transaction `json:"list,omitempty"`
	// ActionData carries a state delta the caller must mirror.
	ActionData *StateDelta `json:"actionData,omitempty"`
}

// rule is one entry of the intent table. Predicate and handler are kept
// separate so priority order and extraction logic are testable independently.
type rule struct {
	intent string
	match  func(msg string) bool
	handle func(ctx context.Context, msg string) Envelope
}

// Dispatcher routes utterances to account operations.
type Dispatcher struct {
	knowledgeBase *kb.KnowledgeBase
	service       *actions.Service
	publisher     events.Publisher
	rules         []rule
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPublisher attaches an event publisher notified of account state
// changes. Publish failures are logged, never surfaced to the user.
func WithPublisher(p events.Publisher) Option {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

// New creates a Dispatcher over the given knowledge base and action service.
func New(knowledgeBase *kb.KnowledgeBase, service *actions.Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		knowledgeBase: knowledgeBase,
		service:       service,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	// Priority order is load-bearing: the first matching rule fires and no
	// further rules are tried.
	d.rules = []rule{
		{IntentFreeze, matchFreeze, d.handleFreeze},
		{IntentUnfreeze, matchUnfreeze, d.handleUnfreeze},
		{IntentDelivery, matchDelivery, d.handleDelivery},
		{IntentTransactions, matchTransactions, d.handleTransactions},
		{IntentPayBill, matchPayBill, d.handlePayBill},
		{IntentEMI, matchEMI, d.handleEMI},
		{IntentStatement, matchStatement, d.handleStatement},
		{IntentDispute, matchDispute, d.handleDispute},
	}
	return d
}

// Handle classifies message and executes the matching operation. It returns
// the response envelope and the name of the intent that fired (IntentKB for a
// knowledge-base hit, IntentFallback when nothing matched).
func (d *Dispatcher) Handle(ctx context.Context, message string) (Envelope, string) {
	msg := strings.ToLower(message)

	// Knowledge base first; a hit short-circuits intent dispatch entirely.
	if answer, ok := d.knowledgeBase.Lookup(msg); ok {
		return Envelope{Reply: answer}, IntentKB
	}

	for _, r := range d.rules {
		if r.match(msg) {
			return r.handle(ctx, msg), r.intent
		}
	}

	return Envelope{Reply: fallbackReply}, IntentFallback
}

// --- Predicates ---------------------------------------------------------------

// matchFreeze matches "freeze" or "block my card". The bare substring check
// would also hit the "freeze" inside "unfreeze", which must reach the
// unfreeze rule below instead, so occurrences preceded by "un" are skipped.
func matchFreeze(msg string) bool {
	if strings.Contains(msg, "block my card") {
		return true
	}
	i := 0
	for {
		j := strings.Index(msg[i:], "freeze")
		if j < 0 {
			return false
		}
		at := i + j
		if at < 2 || msg[at-2:at] != "un" {
			return true
		}
		i = at + len("freeze")
	}
}

func matchUnfreeze(msg string) bool {
	return strings.Contains(msg, "unfreeze") || strings.Contains(msg, "activate card")
}

func matchDelivery(msg string) bool {
	return strings.Contains(msg, "where is my card") ||
		strings.Contains(msg, "track delivery") ||
		strings.Contains(msg, "delivery")
}

func matchTransactions(msg string) bool {
	return strings.Contains(msg, "transactions") || strings.Contains(msg, "history")
}

func matchPayBill(msg string) bool {
	return strings.Contains(msg, "pay") && digitsRe.MatchString(msg)
}

func matchEMI(msg string) bool {
	return strings.Contains(msg, "emi")
}

func matchStatement(msg string) bool {
	return strings.Contains(msg, "statement")
}

func matchDispute(msg string) bool {
	return strings.Contains(msg, "dispute") && txnRe.MatchString(msg)
}

// --- Extractors ---------------------------------------------------------------

// firstNumber returns the first digit run in msg as an integer, or fallback
// when there is none or the run does not fit in an int64.
func firstNumber(msg string, fallback int64) int64 {
	m := digitsRe.FindString(msg)
	if m == "" {
		return fallback
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// allNumbers returns every digit run in msg as integers, skipping runs that
// do not fit in an int64.
func allNumbers(msg string) []int64 {
	var out []int64
	for _, m := range digitsRe.FindAllString(msg, -1) {
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// firstWord returns the first alphabetic run in msg, or fallback when there
// is none. Note that for statement requests this is usually the word
// "statement" itself; that quirk is part of the compatibility contract.
func firstWord(msg, fallback string) string {
	if m := alphaRe.FindString(msg); m != "" {
		return m
	}
	return fallback
}

// --- Handlers -----------------------------------------------------------------

func (d *Dispatcher) handleFreeze(ctx context.Context, msg string) Envelope {
	r := d.service.FreezeCard(ctx)
	d.publish(ctx, events.Event{Type: events.CardFrozen, Status: r.Status})
	return Envelope{
		Reply:      "Your card is now " + r.Status + ".",
		Action:     IntentFreeze,
		ActionData: &StateDelta{Status: r.Status},
	}
}

func (d *Dispatcher) handleUnfreeze(ctx context.Context, msg string) Envelope {
	r := d.service.UnfreezeCard(ctx)
	d.publish(ctx, events.Event{Type: events.CardUnfrozen, Status: r.Status})
	return Envelope{
		Reply:      "Your card is now " + r.Status + ".",
		Action:     IntentUnfreeze,
		ActionData: &StateDelta{Status: r.Status},
	}
}

func (d *Dispatcher) handleDelivery(ctx context.Context, msg string) Envelope {
	r := d.service.CheckDeliveryStatus(ctx)
	return Envelope{
		Reply:  "Your card is " + r.Status + ". Courier: " + r.Courier + ". ETA: " + r.ETA + ".",
		Action: IntentDelivery,
	}
}

func (d *Dispatcher) handleTransactions(ctx context.Context, msg string) Envelope {
	list := d.service.GetTransactions(ctx)
	return Envelope{
		Reply:  "Here are your recent transactions:",
		Action: IntentTransactions,
		List:   list,
	}
}

func (d *Dispatcher) handlePayBill(ctx context.Context, msg string) Envelope {
	amount := firstNumber(msg, 0)
	r := d.service.PayBill(ctx, amount)
	d.publish(ctx, events.Event{Type: events.BillPaid, Amount: amount, NewBalance: r.NewBalance})
	balance := r.NewBalance
	return Envelope{
		Reply:      "Payment successful. New balance: ₹" + strconv.FormatInt(balance, 10) + ".",
		Action:     IntentPayBill,
		ActionData: &StateDelta{NewBalance: &balance},
	}
}

func (d *Dispatcher) handleEMI(ctx context.Context, msg string) Envelope {
	amount := int64(defaultEMIAmount)
	tenure := defaultEMITenure
	if nums := allNumbers(msg); len(nums) > 0 {
		amount = nums[0]
		if len(nums) > 1 {
			tenure = int(nums[1])
		}
	}
	r := d.service.ConvertToEMI(ctx, amount, tenure)
	return Envelope{
		Reply: "Your EMI is ₹" + strconv.FormatInt(r.EMI, 10) + "/month for " +
			strconv.Itoa(r.Tenure) + " months.",
		Action: IntentEMI,
	}
}

func (d *Dispatcher) handleStatement(ctx context.Context, msg string) Envelope {
	month := firstWord(msg, defaultMonth)
	r := d.service.GenerateStatement(ctx, month)
	return Envelope{
		Reply:  "Here is your statement for " + month + ": " + r.URL,
		Action: IntentStatement,
	}
}

func (d *Dispatcher) handleDispute(ctx context.Context, msg string) Envelope {
	txnID := strings.ToUpper(txnRe.FindString(msg))
	r := d.service.RaiseDispute(ctx, txnID, disputeReason)
	return Envelope{
		Reply:  "Dispute raised. Ticket ID: " + r.TicketID,
		Action: IntentDispute,
	}
}

// publish forwards a state-change event to the configured publisher, if any.
func (d *Dispatcher) publish(ctx context.Context, evt events.Event) {
	if d.publisher == nil {
		return
	}
	evt.At = time.Now().UTC()
	if err := d.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("publish state-change event", "type", evt.Type, "err", err)
	}
}
