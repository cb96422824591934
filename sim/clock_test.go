package sim

import "testing"

func TestClockDispatchesInTimeOrder(t *testing.T) {
	c := NewClock(nil)
	var order []string

	c.Spawn(10, func(p *Proc) { order = append(order, "ten") })
	c.Spawn(5, func(p *Proc) { order = append(order, "five") })
	c.Spawn(5, func(p *Proc) { order = append(order, "five-again") })

	c.Run(100)

	want := []string{"five", "five-again", "ten"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestProcWaitAdvancesClock(t *testing.T) {
	c := NewClock(nil)
	var seen float64

	c.Spawn(0, func(p *Proc) {
		p.Wait(15)
		seen = p.Now()
	})
	c.Run(100)

	if seen != 15 {
		t.Fatalf("expected process to observe time 15 after waiting, got %v", seen)
	}
}

func TestRunStopsAtHorizon(t *testing.T) {
	c := NewClock(nil)
	ran := false

	c.Spawn(50, func(p *Proc) { ran = true })
	c.Run(10)

	if ran {
		t.Fatal("expected process scheduled after horizon not to run")
	}
}

func TestWaitClampsNegativeDelta(t *testing.T) {
	c := NewClock(nil)
	var after float64

	c.Spawn(5, func(p *Proc) {
		p.Wait(-3)
		after = p.Now()
	})
	c.Run(100)

	if after != 5 {
		t.Fatalf("expected negative wait to be clamped to zero elapsed time, got %v", after)
	}
}
