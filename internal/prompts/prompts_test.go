package prompts

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeToneDefaultsToProfessional(t *testing.T) {
	if NormalizeTone("") != ToneProfessional {
		t.Error("empty tone should default to professional")
	}
	if NormalizeTone("bogus") != ToneProfessional {
		t.Error("unknown tone should default to professional")
	}
	if NormalizeTone("Friendly") != ToneFriendly {
		t.Error("tone matching should be case-insensitive")
	}
}

func TestBuildIncludesDisclosureAndObjective(t *testing.T) {
	prompt := Build(Inputs{
		AgentName:         "Michael",
		OperatorCompany:   "Acme",
		Selling:           "AI sales automation",
		ProspectFirstName: "John",
		ValueProps:        []string{"Saves 10 hours a week"},
		CommonObjections:  []string{"Too expensive -> emphasize ROI"},
	}, time.Date(2026, 7, 31, 14, 22, 0, 0, time.UTC))

	if !strings.Contains(prompt, "AI") {
		t.Error("expected AI disclosure rule in prompt")
	}
	if !strings.Contains(prompt, "book") {
		t.Error("expected booking objective in prompt")
	}
	if !strings.Contains(prompt, "Saves 10 hours a week") {
		t.Error("expected value prop to be included")
	}
	if !strings.Contains(prompt, "John") {
		t.Error("expected prospect name to be included")
	}
}

func TestAugmentAddsBargeInInstructionAtThreshold(t *testing.T) {
	base := "base prompt"
	if got := Augment(base, "neutral", 0); got != base {
		t.Errorf("expected no augmentation, got %q", got)
	}
	if got := Augment(base, "neutral", 2); !strings.Contains(got, "single short sentence") {
		t.Errorf("expected barge-in instruction at threshold, got %q", got)
	}
	if got := Augment(base, "hostile", 0); !strings.Contains(got, "De-escalate") {
		t.Errorf("expected hostile augmentation, got %q", got)
	}
}

func TestForSessionFallsBackToDefault(t *testing.T) {
	if got := ForSession(""); got != DefaultSystem {
		t.Errorf("ForSession(\"\") = %q, want default", got)
	}
	if got := ForSession("custom"); got != "custom" {
		t.Errorf("ForSession(custom) = %q, want custom", got)
	}
}
