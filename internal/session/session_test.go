package session

import "testing"

func TestAppendTurnKeepsHistoryAndTranscriptInSync(t *testing.T) {
	s := New("sess-1", Identity{FirstName: "John", Phone: "+15551234567"})
	s.AppendTurn(RoleAssistant, "Hi there, this is an AI assistant.")
	s.AppendTurn(RoleUser, "Sure, go ahead.")

	if len(s.History) != len(s.Transcript) {
		t.Fatalf("history len %d != transcript len %d", len(s.History), len(s.Transcript))
	}
	for i, turn := range s.History {
		if s.Transcript[i].Text != turn.Text {
			t.Errorf("entry %d: transcript text %q != history text %q", i, s.Transcript[i].Text, turn.Text)
		}
	}
}

func TestWordCountsAccumulate(t *testing.T) {
	s := New("sess-2", Identity{})
	s.AppendTurn(RoleAssistant, "one two three")
	s.AppendTurn(RoleUser, "four five")
	s.AppendTurn(RoleAssistant, "six")

	if s.Counters.AssistantWordCount != 4 {
		t.Errorf("assistant word count = %d, want 4", s.Counters.AssistantWordCount)
	}
	if s.Counters.ProspectWordCount != 2 {
		t.Errorf("prospect word count = %d, want 2", s.Counters.ProspectWordCount)
	}
}

func TestAppendVoicemailLineDoesNotAddHistory(t *testing.T) {
	s := New("sess-3", Identity{})
	s.AppendTurn(RoleAssistant, "Hi, this is a message.")
	s.AppendVoicemailLine("Sorry we missed you, please call back.")

	if len(s.History) != 1 {
		t.Fatalf("history len = %d, want 1", len(s.History))
	}
	if len(s.Transcript) != 2 {
		t.Fatalf("transcript len = %d, want 2", len(s.Transcript))
	}
	if !s.Transcript[1].Voicemail {
		t.Error("expected second transcript entry to be tagged voicemail")
	}
}

func TestBANTDepth(t *testing.T) {
	b := BANT{Budget: true, Need: true}
	if got := b.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}
}

func TestCancelTokenIdempotent(t *testing.T) {
	tok := NewCancelToken()
	if tok.IsCanceled() {
		t.Fatal("fresh token should not be canceled")
	}
	tok.Cancel()
	tok.Cancel()
	if !tok.IsCanceled() {
		t.Fatal("expected canceled after Cancel()")
	}
	select {
	case <-tok.Done():
	default:
		t.Fatal("expected Done() channel closed")
	}
}

func TestManagerInsertGetDelete(t *testing.T) {
	m := NewManager()
	s := New("sess-4", Identity{})
	m.Insert(s)

	if got := m.Get("sess-4"); got != s {
		t.Fatal("expected Get to return inserted session")
	}
	m.Delete("sess-4")
	if got := m.Get("sess-4"); got != nil {
		t.Fatal("expected Get to return nil after delete")
	}
}
