package orchestrator

import "time"

// armTimer (re)arms the named timer, stopping any prior instance first so
// a later event always supersedes an earlier one — e.g. a fresh ASR final
// resets the turn timer rather than stacking a second one.
func (c *call) armTimer(kind TimerKind, d time.Duration) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if existing, ok := c.timers[kind]; ok {
		existing.Stop()
	}
	c.timers[kind] = time.AfterFunc(d, func() {
		c.push(Event{Kind: EvtTimer, Timer: kind})
	})
}

// cancelTimer stops and forgets the named timer, if armed.
func (c *call) cancelTimer(kind TimerKind) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if existing, ok := c.timers[kind]; ok {
		existing.Stop()
		delete(c.timers, kind)
	}
}

func (c *call) cancelAllTimers() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	for kind, t := range c.timers {
		t.Stop()
		delete(c.timers, kind)
	}
}
