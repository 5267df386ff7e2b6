package va_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stg-lang/stg/va"
)

func ExampleModule_Render() {
	m := va.NewModule("inv")
	sup, _ := m.Supply("VDD", "VSS")
	rf, _ := m.RealParam("RISE_FALL_PAR", "100e-12")
	dl, _ := m.RealParam("DELAY_PAR", "100e-12")
	in, _ := m.DigIn("a", sup, nil)
	out, _ := m.DigOut("y", sup, &va.PinConfig{Delay: dl, Rise: rf, Fall: rf})
	m.Analog(&va.At{On: in.Rising(), Body: []va.Stmt{out.Write(va.Int(0))}})
	m.Analog(&va.At{On: in.Falling(), Body: []va.Stmt{out.Write(va.Int(1))}})
	if err := m.Render(os.Stdout); err != nil {
		panic(err)
	}
	// Output:
	// `include "constants.vams"
	// `include "disciplines.vams"
	//
	// module inv(VSS, VDD, a, y);
	//
	// inout VSS;
	// inout VDD;
	// input a;
	// output y;
	//
	// electrical VSS;
	// electrical VDD;
	// electrical a;
	// electrical y;
	//
	// parameter real RISE_FALL_PAR = 100e-12;
	// parameter real DELAY_PAR = 100e-12;
	//
	// integer y$st;
	//
	// analog begin
	//   V(y, VSS) <+ transition(y$st * V(VDD, VSS), DELAY_PAR, RISE_FALL_PAR, RISE_FALL_PAR);
	//   @(cross(V(a, VSS) - (V(VDD, VSS) / 2), +1)) begin
	//     y$st = 0;
	//   end
	//   @(cross(V(a, VSS) - (V(VDD, VSS) / 2), -1)) begin
	//     y$st = 1;
	//   end
	// end
	//
	// endmodule
}

func TestModule_Collisions(t *testing.T) {
	m := va.NewModule("top")
	if err := m.Port("top", va.In); err == nil {
		t.Error("port named after the module must fail")
	}
	if err := m.Port("a", va.In); err != nil {
		t.Fatal(err)
	}
	if _, err := m.IntVar("a", nil); err == nil {
		t.Error("variable shadowing a port must fail")
	}
	if _, err := m.RealParam("P", "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.IntParam("P", 0); err == nil {
		t.Error("duplicated parameter must fail")
	}
}

func TestModule_InitialStep(t *testing.T) {
	m := va.NewModule("top")
	if _, err := m.IntVar("zero", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.IntVar("marked", va.Int(2)); err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := m.Render(&b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "@(initial_step) begin") {
		t.Error("missing initial step block")
	}
	if !strings.Contains(out, "marked = 2;") {
		t.Error("missing initial assignment")
	}
	if strings.Contains(out, "zero = ") {
		t.Error("zero valued variable must not be initialized")
	}
}

func TestService_Flush(t *testing.T) {
	m := va.NewModule("top")
	var b strings.Builder
	if err := (va.Service{}).Flush(&b, m); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "module top();") {
		t.Errorf("unexpected output %q", b.String())
	}
}
