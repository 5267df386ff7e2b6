package builder_test

import (
	"strings"
	"testing"

	"github.com/stg-lang/stg"
	"github.com/stg-lang/stg/builder"
	"github.com/stg-lang/stg/gfile"
)

const handshake = `
# ack/req handshake with one explicit place
.model hs
.inputs a
.outputs b
.internal x
.dummy d
.graph
a+ b+
b+ p1
p1 a-
a- d
d b-
b- x+
x+ a+
.marking { <x+,a+> p1 = 0 }
.capacity p1 = 2
.end
`

func parse(t *testing.T, src string) *gfile.File {
	t.Helper()
	f, err := gfile.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestBuild(t *testing.T) {
	n, err := builder.Build(parse(t, handshake), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n.Name != "hs" {
		t.Errorf("model name %q, want hs", n.Name)
	}
	kinds := []stg.Kind{stg.Output, stg.Input, stg.Internal, stg.Dummy}
	names := []string{"b", "a", "x", "d"}
	if len(n.Signals) != len(kinds) {
		t.Fatalf("got %d signals, want %d", len(n.Signals), len(kinds))
	}
	for i, s := range n.Signals {
		if s.Name != names[i] || s.Kind != kinds[i] {
			t.Errorf("signal %d = %s (%s), want %s (%s)", i, s.Name, s.Kind, names[i], kinds[i])
		}
	}
	if len(n.Transitions) != 6 {
		t.Errorf("got %d transitions, want 6", len(n.Transitions))
	}
	if len(n.Places) != 6 {
		t.Errorf("got %d places, want 6", len(n.Places))
	}
	if len(n.Arcs()) != 12 {
		t.Errorf("got %d arcs, want 12", len(n.Arcs()))
	}
}

func TestBuild_Places(t *testing.T) {
	n, err := builder.Build(parse(t, handshake), nil)
	if err != nil {
		t.Fatal(err)
	}
	p1, ok := n.PlaceNamed("p1")
	if !ok {
		t.Fatal("place p1 not found")
	}
	if p1.Implicit {
		t.Error("p1 is implicit, want explicit")
	}
	if p1.Marking != 0 || p1.Capacity != 2 {
		t.Errorf("p1 has marking %d capacity %d, want 0 and 2", p1.Marking, p1.Capacity)
	}
	imp, ok := n.PlaceNamed("x+,a+")
	if !ok {
		t.Fatal(`place "x+,a+" not found`)
	}
	if !imp.Implicit {
		t.Error("x+,a+ is explicit, want implicit")
	}
	if imp.Marking != 1 || imp.Capacity != 1 {
		t.Errorf("x+,a+ has marking %d capacity %d, want 1 and 1", imp.Marking, imp.Capacity)
	}
	if first, ok := n.PlaceNamed("a+,b+"); !ok || first.Marking != 0 {
		t.Error("a+,b+ should exist with no tokens")
	}
}

func TestBuild_Transitions(t *testing.T) {
	n, err := builder.Build(parse(t, handshake), nil)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := n.SignalNamed("a")
	if got := len(a.Transitions(stg.Rise)); got != 1 {
		t.Errorf("a has %d rising transitions, want 1", got)
	}
	if got := len(a.Transitions(stg.Fall)); got != 1 {
		t.Errorf("a has %d falling transitions, want 1", got)
	}
	d, _ := n.SignalNamed("d")
	if got := len(d.Labels()); got != 1 {
		t.Errorf("d has %d labels, want 1", got)
	}
	at, ok := n.TransitionNamed("a-")
	if !ok {
		t.Fatal("transition a- not found")
	}
	if len(at.From) != 1 || len(at.To) != 1 {
		t.Errorf("a- has %d in and %d out arcs, want 1 and 1", len(at.From), len(at.To))
	}
}

func TestBuild_ImplicitPlaceReuse(t *testing.T) {
	src := `
.model m
.inputs a
.outputs b
.graph
a+ b+
a+ b+
.end
`
	n, err := builder.Build(parse(t, src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Places) != 1 {
		t.Fatalf("got %d places, want 1", len(n.Places))
	}
	p := n.Places[0]
	if p.Name != "a+,b+" {
		t.Errorf("place name %q, want a+,b+", p.Name)
	}
	if len(p.In) != 2 || len(p.Out) != 2 {
		t.Errorf("place has %d in and %d out arcs, want 2 and 2", len(p.In), len(p.Out))
	}
}

func TestBuild_KindMapping(t *testing.T) {
	for _, tt := range []struct {
		name    string
		cfg     *builder.Config
		wantB   stg.Kind
		wantX   stg.Kind
		wantErr bool
	}{
		{name: "default", cfg: nil, wantB: stg.Output, wantX: stg.Internal},
		{name: "exposed internals", cfg: &builder.Config{OutputKind: stg.Output, InternalKind: stg.Output}, wantB: stg.Output, wantX: stg.Output},
		{name: "all driven externally", cfg: &builder.Config{OutputKind: stg.Input, InternalKind: stg.Input}, wantB: stg.Input, wantX: stg.Input},
		{name: "outputs as internals", cfg: &builder.Config{OutputKind: stg.Internal, InternalKind: stg.Internal}, wantErr: true},
		{name: "internals as dummies", cfg: &builder.Config{OutputKind: stg.Output, InternalKind: stg.Dummy}, wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			n, err := builder.Build(parse(t, handshake), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got none")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			b, _ := n.SignalNamed("b")
			x, _ := n.SignalNamed("x")
			if b.Kind != tt.wantB {
				t.Errorf("b is %s, want %s", b.Kind, tt.wantB)
			}
			if x.Kind != tt.wantX {
				t.Errorf("x is %s, want %s", x.Kind, tt.wantX)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arc between places",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\np1 p2\n.end\n",
			want: "arc from place",
		},
		{
			name: "only dummies",
			src:  ".model m\n.dummy d e\n.graph\nd e\n.end\n",
			want: "no input or output signals",
		},
		{
			name: "no graph section",
			src:  ".model m\n.inputs a\n.outputs b\n.end\n",
			want: "no graph declaration",
		},
		{
			name: "empty graph",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\n.end\n",
			want: "no arcs",
		},
		{
			name: "signal without edge",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\na+ b\n.end\n",
			want: "malformed token",
		},
		{
			name: "duplicated signal",
			src:  ".model m\n.inputs a\n.outputs a\n.graph\na+ a-\n.end\n",
			want: "duplicated signal",
		},
		{
			name: "duplicated capacity",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\na+ b+\n.capacity p1=2 p1=3\n.end\n",
			want: "duplicated capacity",
		},
		{
			name: "capacity without value",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\na+ b+\n.capacity p1\n.end\n",
			want: "needs a value",
		},
		{
			name: "capacity of zero",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\na+ b+\n.capacity p1=0\n.end\n",
			want: "must be positive",
		},
		{
			name: "duplicated marking",
			src:  ".model m\n.inputs a\n.outputs b\n.graph\na+ b+\n.marking { p1 p1=2 }\n.end\n",
			want: "duplicated marking",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.Build(parse(t, tt.src), nil)
			if err == nil {
				t.Fatalf("want error containing %q, got none", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestBuild_ErrorNamesLine(t *testing.T) {
	src := ".model m\n.inputs a\n.outputs b\n.graph\na+ b+\nb+ b\n.end\n"
	_, err := builder.Build(parse(t, src), nil)
	if err == nil {
		t.Fatal("want error, got none")
	}
	if !strings.HasPrefix(err.Error(), "line 6:") {
		t.Errorf("error %q does not name line 6", err)
	}
}

func TestBuild_UnknownOverrideIsNotFatal(t *testing.T) {
	src := ".model m\n.inputs a\n.outputs b\n.graph\na+ b+\n.marking { zz }\n.end\n"
	n, err := builder.Build(parse(t, src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.PlaceNamed("zz"); ok {
		t.Error("marking alone must not create a place")
	}
}
