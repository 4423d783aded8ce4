package sunset

import (
	"errors"
	"testing"
	"time"
)

var testStart = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func testTimeline(t *testing.T) Timeline {
	t.Helper()
	tl, err := NewTimeline(testStart, DefaultOffsets, DefaultMinimumOffset)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	return tl
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestEvaluate_MalformedStateBehavesLikeFirstRun(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(40))
	want := tl.Evaluate(RawState{}, now)

	cases := map[string]RawState{
		"non-numeric index": {Index: "abc", Date: now.Format(DateLayout)},
		"negative index":    {Index: "-1", Date: now.Format(DateLayout)},
		"index too large":   {Index: "4", Date: now.Format(DateLayout)},
		"unparseable date":  {Index: "2", Date: "yesterday-ish"},
		"empty date":        {Index: "2", Date: ""},
		"float index":       {Index: "1.5", Date: now.Format(DateLayout)},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := tl.Evaluate(raw, now)
			if got.Action != want.Action || got.Stage != want.Stage || got.Next != want.Next {
				t.Fatalf("Evaluate(%+v) = %+v, want %+v", raw, got, want)
			}
			if !got.Reset {
				t.Fatalf("expected Reset for %+v", raw)
			}
		})
	}
}

func TestEvaluate_FirstTickAlwaysShows(t *testing.T) {
	tl := testTimeline(t)
	for _, now := range []time.Time{
		testStart.Add(-days(365)),
		testStart,
		testStart.Add(days(100)),
	} {
		d := tl.Evaluate(RawState{}, now)
		if d.Action != ActionShow || d.Stage != 0 {
			t.Fatalf("at %v: got %+v, want show stage 0", now, d)
		}
		if d.Next.Index != 1 || !d.Next.Date.Equal(now) {
			t.Fatalf("at %v: next = %+v, want {1 %v}", now, d.Next, now)
		}
	}
}

func TestEvaluate_MinimumOffsetGate(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(20)) // past the stage 1 threshold of 14 days
	last := now.Add(-days(6))

	d := tl.Evaluate(Progress{Index: 1, Date: last}.Raw(), now)
	if d.Action != ActionNone {
		t.Fatalf("got %v, want none while the minimum offset has not elapsed", d.Action)
	}
}

func TestEvaluate_TimelineGate(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(10)) // before the stage 1 threshold
	last := now.Add(-days(9))

	d := tl.Evaluate(Progress{Index: 1, Date: last}.Raw(), now)
	if d.Action != ActionNone {
		t.Fatalf("got %v, want none before the timeline threshold", d.Action)
	}
}

func TestEvaluate_ShowsStageWhenBothGatesPass(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(14))
	last := now.Add(-days(7))

	d := tl.Evaluate(Progress{Index: 1, Date: last}.Raw(), now)
	if d.Action != ActionShow || d.Stage != 1 {
		t.Fatalf("got %+v, want show stage 1", d)
	}
	if d.Next.Index != 2 || !d.Next.Date.Equal(now) {
		t.Fatalf("next = %+v, want {2 %v}", d.Next, now)
	}
	if d.Reset {
		t.Fatal("valid state must not be reported as reset")
	}
}

func TestEvaluate_TerminalStageUninstalls(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(30))
	last := now.Add(-days(8))

	d := tl.Evaluate(Progress{Index: 3, Date: last}.Raw(), now)
	if d.Action != ActionUninstall || d.Stage != 3 {
		t.Fatalf("got %+v, want uninstall at stage 3", d)
	}
}

func TestEvaluate_TerminalStageStillGated(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(30))
	last := now.Add(-days(2))

	d := tl.Evaluate(Progress{Index: 3, Date: last}.Raw(), now)
	if d.Action != ActionNone {
		t.Fatalf("got %v, want none", d.Action)
	}
}

func TestEvaluate_RepeatedTicksDoNotDrift(t *testing.T) {
	tl := testTimeline(t)
	raw := Progress{Index: 1, Date: testStart}.Raw()
	now := testStart.Add(days(13))

	for i := 0; i < 50; i++ {
		if d := tl.Evaluate(raw, now); d.Action != ActionNone {
			t.Fatalf("tick %d: got %v, want none", i, d.Action)
		}
	}
	if !tl.Start.Equal(testStart) {
		t.Fatalf("start moved to %v", tl.Start)
	}
	if d := tl.Evaluate(raw, testStart.Add(days(14))); d.Action != ActionShow {
		t.Fatalf("got %v, want show once the threshold is reached", d.Action)
	}
}

func TestEvaluate_IndexNeverDecreases(t *testing.T) {
	tl := testTimeline(t)
	raw := RawState{}
	now := testStart
	prev := -1
	uninstalled := false

	for tick := 0; tick < 200 && !uninstalled; tick++ {
		d := tl.Evaluate(raw, now)
		switch d.Action {
		case ActionShow:
			if d.Next.Index <= prev {
				t.Fatalf("tick %d: index went from %d to %d", tick, prev, d.Next.Index)
			}
			prev = d.Next.Index
			raw = d.Next.Raw()
		case ActionUninstall:
			if d.Stage != tl.TerminalStage() {
				t.Fatalf("uninstalled at stage %d", d.Stage)
			}
			uninstalled = true
		}
		now = now.Add(12 * time.Hour)
	}
	if !uninstalled {
		t.Fatal("timeline never reached the terminal stage")
	}
	if prev != tl.TerminalStage() {
		t.Fatalf("last persisted index = %d, want %d", prev, tl.TerminalStage())
	}
}

func TestAdvance(t *testing.T) {
	tl := testTimeline(t)
	now := testStart.Add(days(3))

	for stage := 0; stage < tl.TerminalStage(); stage++ {
		d := tl.Advance(stage, now)
		if d.Action != ActionShow || d.Next.Index != stage+1 {
			t.Fatalf("Advance(%d) = %+v", stage, d)
		}
	}
	if d := tl.Advance(tl.TerminalStage(), now); d.Action != ActionUninstall {
		t.Fatalf("Advance(terminal) = %+v, want uninstall", d)
	}
}

func TestNewTimeline_Validation(t *testing.T) {
	cases := []struct {
		name    string
		start   time.Time
		offsets []int
		minOff  int
		wantErr error
	}{
		{"ok", testStart, []int{1, 2}, 0, nil},
		{"no start", time.Time{}, []int{1}, 7, ErrMissingStartDate},
		{"empty", testStart, nil, 7, ErrEmptyTimeline},
		{"negative offset", testStart, []int{-1, 2}, 7, ErrNegativeOffset},
		{"unordered", testStart, []int{7, 3}, 7, ErrUnorderedTimeline},
		{"negative min", testStart, []int{7}, -1, ErrNegativeMinOffset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTimeline(tc.start, tc.offsets, tc.minOff)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewTimeline_CopiesOffsets(t *testing.T) {
	offsets := []int{7, 14}
	tl, err := NewTimeline(testStart, offsets, 7)
	if err != nil {
		t.Fatal(err)
	}
	offsets[0] = 100
	if tl.Offsets[0] != 7 {
		t.Fatalf("timeline shares its offsets slice with the caller")
	}
}
