package kb_test

import (
	"strings"
	"testing"

	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/kb"
)

func mustKB(t *testing.T, entries []kb.Entry) *kb.KnowledgeBase {
	t.Helper()
	knowledgeBase, err := kb.New(entries)
	if err != nil {
		t.Fatalf("kb.New: %v", err)
	}
	return knowledgeBase
}

func TestLookupFirstMatchWins(t *testing.T) {
	// Both keys occur in the utterance; the earlier declaration must win even
	// though the later key is the longer, semantically better match.
	knowledgeBase := mustKB(t, []kb.Entry{
		{Key: "due date", Answer: "answer-due-date"},
		{Key: "credit limit", Answer: "answer-credit-limit"},
	})

	answer, ok := knowledgeBase.Lookup("what is my credit limit and when is the due date")
	if !ok {
		t.Fatal("Lookup returned no match")
	}
	if answer != "answer-due-date" {
		t.Errorf("Lookup = %q, want the earlier entry's answer %q", answer, "answer-due-date")
	}
}

func TestLookupSubstringAnywhere(t *testing.T) {
	knowledgeBase := mustKB(t, []kb.Entry{{Key: "lounge", Answer: "lounge-answer"}})

	tests := []struct {
		message string
		wantOK  bool
	}{
		{"do i get lounge access", true},
		{"lounge", true},
		{"tell me about airport lounges", true}, // key is a prefix of "lounges"
		{"tell me about airports", false},
	}
	for _, tt := range tests {
		_, ok := knowledgeBase.Lookup(tt.message)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) matched = %v, want %v", tt.message, ok, tt.wantOK)
		}
	}
}

func TestLookupNoMatch(t *testing.T) {
	knowledgeBase := kb.Default()

	if answer, ok := knowledgeBase.Lookup("freeze my card"); ok {
		t.Errorf("Lookup matched %q for an action utterance; KB keys must not shadow intents", answer)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := kb.New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
	if _, err := kb.New([]kb.Entry{{Key: "", Answer: "x"}}); err == nil {
		t.Error("New with empty key should fail")
	}
	if _, err := kb.New([]kb.Entry{{Key: "x", Answer: "  "}}); err == nil {
		t.Error("New with blank answer should fail")
	}
}

func TestNewNormalizesKeys(t *testing.T) {
	knowledgeBase := mustKB(t, []kb.Entry{{Key: "  Annual Fee  ", Answer: "no fee"}})

	if _, ok := knowledgeBase.Lookup("what is the annual fee"); !ok {
		t.Error("Lookup should match a key declared with different case and padding")
	}
}

func TestParse(t *testing.T) {
	doc := `entries:
  - key: "due date"
    answer: "Your bill is due on the 20th."
  - key: "reward"
    answer: "1 point per ₹50 spent."
`
	knowledgeBase, err := kb.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if knowledgeBase.Len() != 2 {
		t.Errorf("Len = %d, want 2", knowledgeBase.Len())
	}
	answer, ok := knowledgeBase.Lookup("when is the due date")
	if !ok || !strings.Contains(answer, "due on the 20th") {
		t.Errorf("Lookup = %q, %v", answer, ok)
	}
}

func TestLoad(t *testing.T) {
	knowledgeBase, err := kb.Load("testdata/kb.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if knowledgeBase.Len() != 3 {
		t.Errorf("Len = %d, want 3", knowledgeBase.Len())
	}
	answer, ok := knowledgeBase.Lookup("what is my credit limit")
	if !ok || !strings.Contains(answer, "2,00,000") {
		t.Errorf("Lookup = %q, %v", answer, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := kb.Load("testdata/does-not-exist.yaml"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", ":\n  - ["},
		{"missing entries", "other: 1"},
		{"empty entries", "entries: []"},
		{"entry missing answer", "entries:\n  - key: x"},
		{"unknown field", "entries:\n  - key: x\n    answer: y\n    extra: z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := kb.Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse accepted invalid document:\n%s", tt.doc)
			}
		})
	}
}
