package va_test

import (
	"testing"

	"github.com/stg-lang/stg/va"
)

func TestExprStrings(t *testing.T) {
	p0 := va.Ident("P_p0")
	p1 := va.Ident("P_p1")
	for _, tt := range []struct {
		expr va.Expr
		want string
	}{
		{va.Not(p0), "!P_p0"},
		{va.Not(va.And(p0, p1)), "!(P_p0 && P_p1)"},
		{va.Gt(p0, va.Int(0)), "P_p0 > 0"},
		{va.And(va.Gt(p0, va.Int(0)), va.Gt(p1, va.Int(0))), "(P_p0 > 0) && (P_p1 > 0)"},
		{va.Mul(va.Ident("st"), va.V("VDD", "VSS")), "st * V(VDD, VSS)"},
		{va.Sub(va.V("a", "VSS"), va.Div(va.V("VDD", "VSS"), va.Int(2))), "V(a, VSS) - (V(VDD, VSS) / 2)"},
		{va.Select{Cond: p0, Then: va.Int(1), Else: va.Int(0)}, "P_p0 ? 1 : 0"},
		{va.Real(100e-12), "1e-10"},
		{va.Real(0.05), "0.05"},
		{va.I("drv", "pin"), "I(drv, pin)"},
		{va.Call{Fn: "ddt", Args: []va.Expr{va.V("a", "VSS")}}, "ddt(V(a, VSS))"},
	} {
		if got := tt.expr.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestAll(t *testing.T) {
	if got := va.All().String(); got != "1" {
		t.Errorf("empty conjunction is %q, want 1", got)
	}
	terms := []va.Expr{
		va.Gt(va.Ident("a"), va.Int(0)),
		va.Gt(va.Ident("b"), va.Int(0)),
		va.Gt(va.Ident("c"), va.Int(0)),
	}
	want := "((a > 0) && (b > 0)) && (c > 0)"
	if got := va.All(terms...).String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
