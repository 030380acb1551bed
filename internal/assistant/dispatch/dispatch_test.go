package dispatch_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/account"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/actions"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/dispatch"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/events"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/kb"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	r.events = append(r.events, evt)
	return nil
}

func newDispatcher(t *testing.T) (*dispatch.Dispatcher, *account.Store, *recordingPublisher) {
	t.Helper()
	store := account.NewSeeded()
	service := actions.New(store, actions.WithLatencyUnit(time.Microsecond))
	publisher := &recordingPublisher{}
	d := dispatch.New(kb.Default(), service, dispatch.WithPublisher(publisher))
	return d, store, publisher
}

func TestFreezeIntents(t *testing.T) {
	for _, utterance := range []string{
		"Freeze my card",
		"please BLOCK my card immediately",
	} {
		t.Run(utterance, func(t *testing.T) {
			d, store, _ := newDispatcher(t)
			env, intent := d.Handle(context.Background(), utterance)

			if intent != dispatch.IntentFreeze {
				t.Fatalf("intent = %q, want freeze", intent)
			}
			if !store.IsFrozen() {
				t.Error("account not frozen after dispatch")
			}
			if env.Reply != "Your card is now frozen." {
				t.Errorf("Reply = %q", env.Reply)
			}
			if env.Action != "freeze" {
				t.Errorf("Action = %q, want freeze", env.Action)
			}
			if env.ActionData == nil || env.ActionData.Status != "frozen" {
				t.Errorf("ActionData = %+v, want status frozen", env.ActionData)
			}
		})
	}
}

func TestUnfreezeIntents(t *testing.T) {
	for _, utterance := range []string{
		"unfreeze my card",
		"activate card now please",
	} {
		t.Run(utterance, func(t *testing.T) {
			d, store, _ := newDispatcher(t)
			store.SetFrozen(true)

			env, intent := d.Handle(context.Background(), utterance)
			if intent != dispatch.IntentUnfreeze {
				t.Fatalf("intent = %q, want unfreeze", intent)
			}
			if store.IsFrozen() {
				t.Error("account still frozen after dispatch")
			}
			if env.Reply != "Your card is now active." {
				t.Errorf("Reply = %q", env.Reply)
			}
			if env.ActionData == nil || env.ActionData.Status != "active" {
				t.Errorf("ActionData = %+v, want status active", env.ActionData)
			}
		})
	}
}

func TestDeliveryIntent(t *testing.T) {
	d, _, _ := newDispatcher(t)

	env, intent := d.Handle(context.Background(), "where is my card?")
	if intent != dispatch.IntentDelivery {
		t.Fatalf("intent = %q, want delivery", intent)
	}
	want := "Your card is Out for Delivery. Courier: BlueDart. ETA: Today 6 PM."
	if env.Reply != want {
		t.Errorf("Reply = %q, want %q", env.Reply, want)
	}
}

func TestTransactionsIntent(t *testing.T) {
	d, _, _ := newDispatcher(t)

	env, intent := d.Handle(context.Background(), "show me my recent transactions")
	if intent != dispatch.IntentTransactions {
		t.Fatalf("intent = %q, want transactions", intent)
	}
	if env.Reply != "Here are your recent transactions:" {
		t.Errorf("Reply = %q", env.Reply)
	}
	if len(env.List) != 4 {
		t.Fatalf("len(List) = %d, want 4", len(env.List))
	}
	if env.List[0].ID != "TX101" {
		t.Errorf("List[0].ID = %q, want TX101 (order preserved)", env.List[0].ID)
	}
}

func TestPayBillIntent(t *testing.T) {
	d, store, publisher := newDispatcher(t)

	env, intent := d.Handle(context.Background(), "pay 500 towards my bill")
	if intent != dispatch.IntentPayBill {
		t.Fatalf("intent = %q, want payBill", intent)
	}
	if env.Reply != "Payment successful. New balance: ₹14500." {
		t.Errorf("Reply = %q", env.Reply)
	}
	if store.Balance() != 14500 {
		t.Errorf("balance = %d, want 14500", store.Balance())
	}
	if env.ActionData == nil || env.ActionData.NewBalance == nil || *env.ActionData.NewBalance != 14500 {
		t.Errorf("ActionData = %+v, want newBalance 14500", env.ActionData)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	evt := publisher.events[0]
	if evt.Type != events.BillPaid || evt.Amount != 500 || evt.NewBalance != 14500 {
		t.Errorf("event = %+v", evt)
	}
}

func TestPayBillWithoutAmountFallsThrough(t *testing.T) {
	d, store, _ := newDispatcher(t)

	_, intent := d.Handle(context.Background(), "pay my bill")
	if intent != dispatch.IntentFallback {
		t.Errorf("intent = %q, want fallback (pay without digits never fires)", intent)
	}
	if store.Balance() != 15000 {
		t.Errorf("balance changed: %d", store.Balance())
	}
}

func TestEMIIntent(t *testing.T) {
	d, store, _ := newDispatcher(t)

	env, intent := d.Handle(context.Background(), "convert 1200 into emi over 6 months")
	if intent != dispatch.IntentEMI {
		t.Fatalf("intent = %q, want emi", intent)
	}
	if env.Reply != "Your EMI is ₹215/month for 6 months." {
		t.Errorf("Reply = %q", env.Reply)
	}
	if store.Balance() != 15000 {
		t.Errorf("EMI conversion mutated balance: %d", store.Balance())
	}
}

func TestEMIIntentDefaults(t *testing.T) {
	d, _, _ := newDispatcher(t)

	// No digits at all: amount defaults to 1000, tenure to 6.
	// interest = 1000*0.15*0.5 = 75, emi = round(1075/6) = 179.
	env, _ := d.Handle(context.Background(), "can i get emi on this")
	if env.Reply != "Your EMI is ₹179/month for 6 months." {
		t.Errorf("Reply = %q", env.Reply)
	}
}

func TestStatementIntent(t *testing.T) {
	d, _, _ := newDispatcher(t)

	// The extraction grammar takes the first alphabetic run, which here is
	// the word "statement" itself.
	env, intent := d.Handle(context.Background(), "statement for march")
	if intent != dispatch.IntentStatement {
		t.Fatalf("intent = %q, want statement", intent)
	}
	want := "Here is your statement for statement: https://onecard.app/statement/statement.pdf"
	if env.Reply != want {
		t.Errorf("Reply = %q, want %q", env.Reply, want)
	}
}

func TestDisputeIntent(t *testing.T) {
	d, _, _ := newDispatcher(t)

	env, intent := d.Handle(context.Background(), "dispute tx104, wrong amount")
	if intent != dispatch.IntentDispute {
		t.Fatalf("intent = %q, want dispute", intent)
	}
	if !strings.HasPrefix(env.Reply, "Dispute raised. Ticket ID: TKT-") {
		t.Errorf("Reply = %q", env.Reply)
	}
}

func TestDisputeWithoutTokenFallsThrough(t *testing.T) {
	d, _, _ := newDispatcher(t)

	_, intent := d.Handle(context.Background(), "i want to dispute a charge")
	if intent != dispatch.IntentFallback {
		t.Errorf("intent = %q, want fallback", intent)
	}
}

func TestKnowledgeBaseShortCircuitsIntents(t *testing.T) {
	store := account.NewSeeded()
	service := actions.New(store, actions.WithLatencyUnit(time.Microsecond))
	knowledgeBase, err := kb.New([]kb.Entry{
		{Key: "reward", Answer: "first answer"},
		{Key: "points", Answer: "second answer"},
	})
	if err != nil {
		t.Fatalf("kb.New: %v", err)
	}
	d := dispatch.New(knowledgeBase, service)

	// Both KB keys occur; the earlier declaration must win.
	env, intent := d.Handle(context.Background(), "how do reward points work")
	if intent != dispatch.IntentKB {
		t.Fatalf("intent = %q, want kb", intent)
	}
	if env.Reply != "first answer" {
		t.Errorf("Reply = %q, want the earlier entry", env.Reply)
	}
	if env.Action != "" {
		t.Errorf("Action = %q, want empty for KB hits", env.Action)
	}
}

func TestFallback(t *testing.T) {
	d, _, _ := newDispatcher(t)

	env, intent := d.Handle(context.Background(), "tell me a joke")
	if intent != dispatch.IntentFallback {
		t.Fatalf("intent = %q, want fallback", intent)
	}
	if env.Reply != "I didn’t understand that. Can you rephrase?" {
		t.Errorf("Reply = %q", env.Reply)
	}
	if env.Action != "" || env.List != nil || env.ActionData != nil {
		t.Errorf("fallback envelope should carry only the reply: %+v", env)
	}
}

func TestNormalizationIsCaseInsensitive(t *testing.T) {
	d, store, _ := newDispatcher(t)

	_, intent := d.Handle(context.Background(), "FREEZE MY CARD")
	if intent != dispatch.IntentFreeze {
		t.Fatalf("intent = %q, want freeze", intent)
	}
	if !store.IsFrozen() {
		t.Error("uppercase utterance did not freeze the card")
	}
}
