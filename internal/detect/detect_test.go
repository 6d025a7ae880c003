package detect

import "testing"

func TestSentimentClampAndDecay(t *testing.T) {
	score, label := Sentiment("this sounds great, I love it", 0)
	if score <= 0 {
		t.Fatalf("expected positive score, got %f", score)
	}
	if label != "positive" && label != "enthusiastic" {
		t.Fatalf("unexpected label %q for score %f", label, score)
	}

	// repeated strongly negative input should clamp at -10, never below.
	s := 0.0
	for i := 0; i < 20; i++ {
		s, _ = Sentiment("stop calling, this is harassment", s)
	}
	if s < -10 {
		t.Fatalf("score %f went below clamp floor", s)
	}
}

func TestSentimentShortNeutralIsSlightlyNegative(t *testing.T) {
	score, _ := Sentiment("ok fine", 0)
	if score >= 0 {
		t.Fatalf("expected short neutral utterance to contribute negative delta, got %f", score)
	}
}

func TestSentimentIsPureFunctionOfInputs(t *testing.T) {
	a, _ := Sentiment("sounds good to me", 1.5)
	b, _ := Sentiment("sounds good to me", 1.5)
	if a != b {
		t.Fatalf("Sentiment is not deterministic: %f != %f", a, b)
	}
}

func TestOptOut(t *testing.T) {
	cases := map[string]bool{
		"Please take me off your list.":       true,
		"Don't call me again.":                true,
		"stop":                                true,
		"stop it, that's hilarious":           false,
		"Sure, go ahead.":                      false,
		"Can you just stop":                    true,
	}
	for in, want := range cases {
		if got := OptOut(in); got != want {
			t.Errorf("OptOut(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGatekeeperAndNavigation(t *testing.T) {
	if !Gatekeeper("Who's calling, please?") {
		t.Error("expected gatekeeper match")
	}
	if Gatekeeper("Sure, what's this about our order?") {
		t.Error("unexpected gatekeeper match")
	}

	if !GatekeeperNavigated("Hi, this is John speaking.", "John") {
		t.Error("expected navigation to be detected")
	}
	if GatekeeperNavigated("Hi there.", "John") {
		t.Error("expected no navigation without the name")
	}
}

func TestCallbackCapturesTimeAnchor(t *testing.T) {
	r := Callback("Can you call me back tomorrow at 2pm?")
	if !r.Requested {
		t.Fatal("expected callback requested")
	}
	if r.Time == "" {
		t.Error("expected a captured time anchor")
	}

	r2 := Callback("I'm in a meeting right now")
	if !r2.Requested {
		t.Fatal("expected callback requested for busy phrase")
	}
}

func TestObjectionMatchesPushbackPhrases(t *testing.T) {
	if !Objection("We're not interested, thanks.") {
		t.Error("expected objection match")
	}
	if Objection("Tell me more about this.") {
		t.Error("unexpected objection match")
	}
}

func TestBANTSignalChannelsIndependent(t *testing.T) {
	budget, authority, need, timeline := BANTSignal("What's our budget look like, and how soon can we start?")
	if !budget || !timeline {
		t.Errorf("expected budget and timeline true, got budget=%v timeline=%v", budget, timeline)
	}
	if authority || need {
		t.Errorf("expected authority and need false, got authority=%v need=%v", authority, need)
	}
}

func TestMeetingBookedRequiresAllThreeGates(t *testing.T) {
	assistant := "Perfect, I've got you down for Tuesday at 2 PM — I'll send a calendar invite."
	user := "Sounds good."
	if !MeetingBooked(assistant, user) {
		t.Fatal("expected meeting booked with all gates satisfied")
	}

	// missing a day anchor
	assistantNoDay := "Perfect, I've got you down at 2 PM — I'll send a calendar invite."
	if MeetingBooked(assistantNoDay, user) {
		t.Fatal("expected false when day anchor is missing")
	}

	// missing scheduling phrase from the assistant
	assistantNoScheduling := "Great, Tuesday at 2 PM works for me."
	if MeetingBooked(assistantNoScheduling, user) {
		t.Fatal("expected false when assistant lacks a scheduling phrase")
	}

	// missing prospect confirmation
	if MeetingBooked(assistant, "What about a different time?") {
		t.Fatal("expected false without prospect confirmation")
	}
}
