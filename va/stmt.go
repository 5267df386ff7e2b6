package va

import "fmt"

// Stmt is one analog statement.
type Stmt interface {
	emit(w *writer)
}

type Assign struct {
	LHS Ident
	RHS Expr
}

func (a *Assign) emit(w *writer) { w.p("%s = %s;", a.LHS, a.RHS) }

func Set(lhs Ident, rhs Expr) *Assign { return &Assign{LHS: lhs, RHS: rhs} }

// Inc adds one to a counter variable.
func Inc(v Ident) *Assign { return &Assign{LHS: v, RHS: Add(v, Int(1))} }

// Dec removes one.
func Dec(v Ident) *Assign { return &Assign{LHS: v, RHS: Sub(v, Int(1))} }

type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (s *If) emit(w *writer) {
	w.p("if (%s) begin", s.Cond)
	w.block(s.Then)
	if len(s.Else) > 0 {
		w.p("end else begin")
		w.block(s.Else)
	}
	w.p("end")
}

type While struct {
	Cond Expr
	Body []Stmt
}

func (s *While) emit(w *writer) {
	w.p("while (%s) begin", s.Cond)
	w.block(s.Body)
	w.p("end")
}

// Event is the zero crossing of an expression. Dir +1 watches rising
// crossings, -1 falling, 0 both.
type Event struct {
	Zero Expr
	Dir  int
}

func (e Event) String() string {
	return fmt.Sprintf("cross(%s, %s)", e.Zero, dirString(e.Dir))
}

func dirString(dir int) string {
	switch {
	case dir > 0:
		return "+1"
	case dir < 0:
		return "-1"
	}
	return "0"
}

// At runs Body whenever the event triggers. An empty body still forces the
// simulator to place a timestep on the crossing.
type At struct {
	On   Event
	Body []Stmt
}

func (s *At) emit(w *writer) {
	w.p("@(%s) begin", s.On)
	w.block(s.Body)
	w.p("end")
}

// Strobe prints a diagnostic line at the end of the timestep.
type Strobe struct {
	Msg string
}

func (s *Strobe) emit(w *writer) { w.p("$strobe(%q);", s.Msg) }

// Fatal aborts the simulation.
type Fatal struct {
	Msg string
}

func (s *Fatal) emit(w *writer) { w.p("$fatal(0, %q);", s.Msg) }

// Contrib is a branch contribution.
type Contrib struct {
	Target Probe
	RHS    Expr
}

func (c *Contrib) emit(w *writer) { w.p("%s <+ %s;", c.Target, c.RHS) }
