package orchestrator

import (
	"testing"
	"time"
)

func TestCeilPlaybackDelayRoundsUpToWholeSeconds(t *testing.T) {
	cases := []struct {
		frames int
		want   time.Duration
	}{
		{0, 6 * time.Second},                                 // fallback, no frames sent
		{50, 1*time.Second + 1500*time.Millisecond},          // 50*20ms = 1.0s, no rounding needed
		{51, 2*time.Second + 1500*time.Millisecond},           // 1.02s rounds up to 2s
		{160, 4*time.Second + 1500*time.Millisecond},         // exactly 3.2s -> ceil 4s
	}
	for _, c := range cases {
		got := ceilPlaybackDelay(c.frames, openingCooldownBuffer, openingCooldownFallback)
		if got != c.want {
			t.Errorf("ceilPlaybackDelay(%d) = %v, want %v", c.frames, got, c.want)
		}
	}
}

func TestCeilPlaybackDelayVoicemailFallback(t *testing.T) {
	got := ceilPlaybackDelay(0, voicemailHangupBuffer, voicemailHangupFallback)
	if got != 2*time.Second {
		t.Errorf("got %v, want fallback 2s", got)
	}
}

func TestIsEnglish(t *testing.T) {
	cases := map[string]bool{
		"en":      true,
		"en-US":   true,
		"EN-gb":   true,
		"es":      false,
		"fr-FR":   false,
		"":        false,
	}
	for lang, want := range cases {
		if got := isEnglish(lang); got != want {
			t.Errorf("isEnglish(%q) = %v, want %v", lang, got, want)
		}
	}
}

func TestIsTerminalTelephonyStatus(t *testing.T) {
	terminal := []string{"completed", "Busy", "NO-ANSWER", "canceled", "failed"}
	for _, s := range terminal {
		if !isTerminalTelephonyStatus(s) {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	nonTerminal := []string{"ringing", "in-progress", "initiated", ""}
	for _, s := range nonTerminal {
		if isTerminalTelephonyStatus(s) {
			t.Errorf("expected %q to not be terminal", s)
		}
	}
}
