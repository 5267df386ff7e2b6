package stg_test

import (
	"fmt"
	"testing"

	"github.com/stg-lang/stg"
)

// ExampleNet builds the handshake a+ -> b+ -> a- -> b- by hand. Arcs between
// two transitions pass through implicit places the same way a builder would
// create them.
func ExampleNet() {
	n := stg.NewNet("handshake")

	a, _ := n.AddSignal("a", stg.Input)
	b, _ := n.AddSignal("b", stg.Output)

	aPlus, _ := n.AddTransition("a+", a, stg.Rise)
	aMinus, _ := n.AddTransition("a-", a, stg.Fall)
	bPlus, _ := n.AddTransition("b+", b, stg.Rise)
	bMinus, _ := n.AddTransition("b-", b, stg.Fall)

	pairs := []struct {
		from, to *stg.Transition
		marking  int
	}{
		{aPlus, bPlus, 0},
		{bPlus, aMinus, 0},
		{aMinus, bMinus, 0},
		{bMinus, aPlus, 1},
	}
	for _, pr := range pairs {
		p, _ := n.AddPlace(pr.from.Name+","+pr.to.Name, pr.marking, 1, true)
		n.ConnectTP(pr.from, p)
		n.ConnectPT(p, pr.to)
	}

	for _, arc := range n.Arcs() {
		fmt.Println(arc)
	}
	// Output:
	// b-,a+ -> a+
	// a+ -> a+,b+
	// b+,a- -> a-
	// a- -> a-,b-
	// a+,b+ -> b+
	// b+ -> b+,a-
	// a-,b- -> b-
	// b- -> b-,a+
}

func TestNet_AddSignal(t *testing.T) {
	n := stg.NewNet("t")
	if _, err := n.AddSignal("x", stg.Output); err != nil {
		t.Fatal(err)
	}
	if _, err := n.AddSignal("x", stg.Dummy); err == nil {
		t.Error("expected duplicate error")
	}
	s, ok := n.SignalNamed("x")
	if !ok || s.Kind != stg.Output {
		t.Errorf("lookup failed: %v %v", s, ok)
	}
}

func TestNet_TransitionPerEdge(t *testing.T) {
	n := stg.NewNet("t")
	s, _ := n.AddSignal("q", stg.Output)
	t1, _ := n.AddTransition("q+", s, stg.Rise)
	t2, _ := n.AddTransition("q+/1", s, stg.Rise)
	t3, _ := n.AddTransition("q~", s, stg.Toggle)

	rise := s.Transitions(stg.Rise)
	if len(rise) != 2 || rise[0] != t1.ID || rise[1] != t2.ID {
		t.Errorf("rise transitions out of order: %v", rise)
	}
	if got := s.Transitions(stg.Toggle); len(got) != 1 || got[0] != t3.ID {
		t.Errorf("toggle transitions: %v", got)
	}
	if got := s.Transitions(stg.Fall); len(got) != 0 {
		t.Errorf("fall transitions: %v", got)
	}
}

func TestNet_DummyLabels(t *testing.T) {
	n := stg.NewNet("t")
	d, _ := n.AddSignal("d", stg.Dummy)
	if _, err := n.AddTransition("d", d, stg.Rise); err != nil {
		t.Fatal(err)
	}
	if _, err := n.AddTransition("d/2", d, stg.Rise); err != nil {
		t.Fatal(err)
	}
	if len(d.Labels()) != 2 {
		t.Errorf("want 2 labels, got %d", len(d.Labels()))
	}
	if got := d.Transitions(stg.Rise); len(got) != 0 {
		t.Errorf("dummy must not populate edge tables: %v", got)
	}
}

// Reset items must come out in first-reference order so the generated
// initialization block is stable.
func TestNet_ResetOrder(t *testing.T) {
	n := stg.NewNet("t")
	q, _ := n.AddSignal("q", stg.Output)
	a, _ := n.AddSignal("a", stg.Input)
	n.AddPlace("p0", 1, 1, false)
	n.AddTransition("q+", q, stg.Rise)
	n.AddTransition("a+", a, stg.Rise)
	n.AddPlace("p1", 0, 2, false)

	want := []stg.ResetKind{stg.ResetSignal, stg.ResetPlace, stg.ResetTransition, stg.ResetPlace}
	if len(n.Reset) != len(want) {
		t.Fatalf("want %d reset items, got %d", len(want), len(n.Reset))
	}
	for i, item := range n.Reset {
		if item.Kind != want[i] {
			t.Errorf("reset[%d] kind = %v, want %v", i, item.Kind, want[i])
		}
	}
}

func TestNet_RepeatedArcStacks(t *testing.T) {
	n := stg.NewNet("t")
	a, _ := n.AddSignal("a", stg.Input)
	tr, _ := n.AddTransition("a+", a, stg.Rise)
	p, _ := n.AddPlace("p", 2, 2, false)
	n.ConnectPT(p, tr)
	n.ConnectPT(p, tr)
	if len(tr.From) != 2 {
		t.Errorf("want stacked arc, got %v", tr.From)
	}
}
