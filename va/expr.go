// Package va assembles behavioral Verilog-A modules. It carries a small
// expression and statement tree, digital pin primitives built from
// electrical contributions, a deterministic text renderer, and an
// interpreter that executes a module's event semantics in-process.
package va

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a Verilog-A expression. Atoms are self delimiting; everything
// else is wrapped in parentheses when it becomes an operand.
type Expr interface {
	String() string
	atom() bool
}

// Ident names a variable, parameter, or net.
type Ident string

func (i Ident) String() string { return string(i) }
func (i Ident) atom() bool     { return true }

type Int int

func (i Int) String() string { return strconv.Itoa(int(i)) }
func (i Int) atom() bool     { return i >= 0 }

type Real float64

func (r Real) String() string { return strconv.FormatFloat(float64(r), 'g', -1, 64) }
func (r Real) atom() bool     { return r >= 0 }

// Probe is a branch probe such as V(a, b) or I(a, b).
type Probe struct {
	Fn    string
	Plus  string
	Minus string
}

func V(plus, minus string) Probe { return Probe{Fn: "V", Plus: plus, Minus: minus} }
func I(plus, minus string) Probe { return Probe{Fn: "I", Plus: plus, Minus: minus} }

func (p Probe) String() string {
	if p.Minus == "" {
		return fmt.Sprintf("%s(%s)", p.Fn, p.Plus)
	}
	return fmt.Sprintf("%s(%s, %s)", p.Fn, p.Plus, p.Minus)
}

func (p Probe) atom() bool { return true }

// Call applies an analog operator or function, e.g. transition or ddt.
type Call struct {
	Fn   string
	Args []Expr
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Fn + "(" + strings.Join(args, ", ") + ")"
}

func (c Call) atom() bool { return true }

type Unary struct {
	Op string
	X  Expr
}

func (u Unary) String() string { return u.Op + wrap(u.X) }
func (u Unary) atom() bool     { return true }

type Binary struct {
	Op   string
	L, R Expr
}

func (b Binary) String() string { return wrap(b.L) + " " + b.Op + " " + wrap(b.R) }
func (b Binary) atom() bool     { return false }

// Select is the ternary choice cond ? then : else.
type Select struct {
	Cond, Then, Else Expr
}

func (s Select) String() string {
	return wrap(s.Cond) + " ? " + wrap(s.Then) + " : " + wrap(s.Else)
}

func (s Select) atom() bool { return false }

func wrap(e Expr) string {
	if e.atom() {
		return e.String()
	}
	return "(" + e.String() + ")"
}

func Not(x Expr) Expr { return Unary{Op: "!", X: x} }
func Neg(x Expr) Expr { return Unary{Op: "-", X: x} }
func And(l, r Expr) Expr { return Binary{Op: "&&", L: l, R: r} }
func Or(l, r Expr) Expr { return Binary{Op: "||", L: l, R: r} }
func Add(l, r Expr) Expr { return Binary{Op: "+", L: l, R: r} }
func Sub(l, r Expr) Expr { return Binary{Op: "-", L: l, R: r} }
func Mul(l, r Expr) Expr { return Binary{Op: "*", L: l, R: r} }
func Div(l, r Expr) Expr { return Binary{Op: "/", L: l, R: r} }
func Gt(l, r Expr) Expr { return Binary{Op: ">", L: l, R: r} }
func Lt(l, r Expr) Expr { return Binary{Op: "<", L: l, R: r} }
func Ge(l, r Expr) Expr { return Binary{Op: ">=", L: l, R: r} }
func Eq(l, r Expr) Expr { return Binary{Op: "==", L: l, R: r} }
func Ne(l, r Expr) Expr { return Binary{Op: "!=", L: l, R: r} }

// All folds terms into a conjunction. No terms means always true.
func All(terms ...Expr) Expr {
	if len(terms) == 0 {
		return Int(1)
	}
	e := terms[0]
	for _, t := range terms[1:] {
		e = And(e, t)
	}
	return e
}
