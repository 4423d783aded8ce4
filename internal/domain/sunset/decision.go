// internal/domain/sunset/decision.go
package sunset

import "time"

// Action is the side effect a tick asks for.
type Action int

const (
	ActionNone Action = iota
	ActionShow
	ActionUninstall
)

func (a Action) String() string {
	switch a {
	case ActionShow:
		return "show"
	case ActionUninstall:
		return "uninstall"
	default:
		return "none"
	}
}

// Decision is the outcome of evaluating one tick.
type Decision struct {
	Action Action
	Stage  int      // Stage being shown or uninstalled at; meaningless for ActionNone
	Next   Progress // State to persist after a successful ActionShow
	Reset  bool     // Stored state was missing or malformed and was treated as index 0
}

// Evaluate decides what a tick at now should do given the stored state.
// It has no side effects.
func (t Timeline) Evaluate(raw RawState, now time.Time) Decision {
	p, ok := ParseProgress(raw, t.Stages())
	d := t.evaluate(p, now)
	d.Reset = !ok
	return d
}

func (t Timeline) evaluate(p Progress, now time.Time) Decision {
	// The first notification is not time-gated.
	if p.Index == 0 {
		return t.Advance(0, now)
	}

	timelineThreshold, offsetThreshold := t.Thresholds(p)
	if now.Before(timelineThreshold) || now.Before(offsetThreshold) {
		return Decision{Action: ActionNone, Stage: p.Index, Next: p}
	}
	return t.Advance(p.Index, now)
}

// Advance returns the effect of moving to stage index. The terminal stage uninstalls
// and leaves progress untouched; any other stage is shown and recorded as {index+1, now}.
func (t Timeline) Advance(index int, now time.Time) Decision {
	if t.IsTerminal(index) {
		return Decision{Action: ActionUninstall, Stage: index, Next: Progress{Index: index}}
	}
	return Decision{
		Action: ActionShow,
		Stage:  index,
		Next:   Progress{Index: index + 1, Date: now},
	}
}
