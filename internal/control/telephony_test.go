package control

import (
	"testing"

	"github.com/coldcall/callengine/internal/session"
)

func TestMapTelephonyStatus(t *testing.T) {
	cases := []struct {
		in       string
		want     session.Status
		terminal bool
	}{
		{"completed", session.StatusCompleted, true},
		{"busy", session.StatusBusy, true},
		{"no-answer", session.StatusNoAnswer, true},
		{"canceled", session.StatusCanceled, true},
		{"failed", session.StatusFailed, true},
		{"ringing", session.StatusRinging, false},
		{"in-progress", session.StatusConnected, false},
		{"", session.StatusConnected, false},
	}
	for _, c := range cases {
		got, terminal := mapTelephonyStatus(c.in)
		if got != c.want || terminal != c.terminal {
			t.Errorf("mapTelephonyStatus(%q) = (%v, %v), want (%v, %v)", c.in, got, terminal, c.want, c.terminal)
		}
	}
}
