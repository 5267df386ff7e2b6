// Package codegen walks a completed signal transition graph and assembles
// the behavioral Verilog-A model: pins, token state, the reset sequence,
// the per-signal commit blocks, and the bounded firing cascade.
package codegen

import (
	"fmt"
	"strings"

	"github.com/stg-lang/stg"
	"github.com/stg-lang/stg/va"
	"go.uber.org/zap"
)

// stuckMsg is printed when the cascade exceeds maxPasses.
const stuckMsg = "STG seems to be stuck in a infinite loop of dummy, internal or output transitions."

const maxPasses = 500

// Options name the shared handles of a generated model.
type Options struct {
	Vdd      string
	Vss      string
	Rst      string
	SeeError bool // expose the sticky error flag on a dedicated output pin

	Logger *zap.Logger
}

func DefaultOptions() *Options {
	return &Options{Vdd: "VDD", Vss: "VSS", Rst: "RST"}
}

var mangler = strings.NewReplacer(",", "$$", "+", "$p", "-", "$m", "~", "$t", "/", "$")

// mangle turns a net entity name into a legal identifier chunk.
func mangle(name string) string { return mangler.Replace(name) }

// pin is the electrical side of one signal: observed for inputs, driven
// for outputs and internals.
type pin struct {
	in  *va.DigIn
	out *va.DigOut
}

func (p pin) rising() va.Event {
	if p.in != nil {
		return p.in.Rising()
	}
	return p.out.Rising()
}

func (p pin) falling() va.Event {
	if p.in != nil {
		return p.in.Falling()
	}
	return p.out.Falling()
}

// Generator assembles the model for one net.
type Generator struct {
	net *stg.Net
	opt *Options
	log *zap.Logger

	mod   *va.Module
	sup   *va.Supply
	rst   *va.DigIn
	rstIf *va.If

	rf     va.Ident
	dl     va.Ident
	inCap  va.Ident
	serRes va.Ident
	errVar va.Ident
	done   va.Ident
	iter   va.Ident
	errPin *va.DigOut

	pins   map[stg.SignalID]pin
	pars   map[stg.SignalID]va.Ident
	tokens map[stg.PlaceID]va.Ident
	cells  map[stg.TransitionID]va.Ident
}

// Synthesize compiles the net into a Verilog-A module.
func Synthesize(n *stg.Net, opt *Options) (*va.Module, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	g := &Generator{
		net:    n,
		opt:    opt,
		log:    log,
		pins:   make(map[stg.SignalID]pin),
		pars:   make(map[stg.SignalID]va.Ident),
		tokens: make(map[stg.PlaceID]va.Ident),
		cells:  make(map[stg.TransitionID]va.Ident),
	}
	for _, step := range []func() error{g.scaffold, g.signals, g.state, g.commits, g.cascade} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	log.Debug("model assembled",
		zap.String("module", n.Name),
		zap.Int("places", len(n.Places)),
		zap.Int("transitions", len(n.Transitions)),
	)
	return g.mod, nil
}

// scaffold declares everything every model carries: the supply pair, the
// timing parameters, the sticky error flag, the reset pin with its forced
// timestep and reset block, the cascade bookkeeping, and the optional
// error pin.
func (g *Generator) scaffold() error {
	g.mod = va.NewModule(g.net.Name)
	sup, err := g.mod.Supply(g.opt.Vdd, g.opt.Vss)
	if err != nil {
		return err
	}
	g.sup = sup
	if g.rf, err = g.mod.RealParam("RISE_FALL_PAR", "100e-12"); err != nil {
		return err
	}
	if g.dl, err = g.mod.RealParam("DELAY_PAR", "100e-12"); err != nil {
		return err
	}
	if g.inCap, err = g.mod.RealParam("IN_CAP_PAR", "10e-15"); err != nil {
		return err
	}
	if g.serRes, err = g.mod.RealParam("OUT_RES_PAR", "10e3"); err != nil {
		return err
	}
	if g.errVar, err = g.mod.IntVar("STG_ERROR", nil); err != nil {
		return err
	}
	if g.rst, err = g.mod.DigIn(g.opt.Rst, g.sup, g.inCap); err != nil {
		return err
	}
	g.rstIf = &va.If{Cond: va.Not(g.rst.Read())}
	g.mod.Analog(&va.At{On: g.rst.Edges()}, g.rstIf)
	if g.done, err = g.mod.IntVar("_$done", nil); err != nil {
		return err
	}
	if g.iter, err = g.mod.IntVar("_$counter", nil); err != nil {
		return err
	}
	if g.opt.SeeError {
		g.errPin, err = g.mod.DigOut("__STG_ERROR__", g.sup, &va.PinConfig{
			Delay: va.Int(0), Rise: va.Real(1e-12), Fall: va.Real(1e-12),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// signals declares one pin or driven node per non-dummy signal, in
// registration order. Driven signals get a reset value parameter.
func (g *Generator) signals() error {
	for _, s := range g.net.Signals {
		switch s.Kind {
		case stg.Input:
			in, err := g.mod.DigIn(s.Name, g.sup, g.inCap)
			if err != nil {
				return err
			}
			g.pins[s.ID] = pin{in: in}
		case stg.Output, stg.Internal:
			par, err := g.mod.IntParam(s.Name+"_RST_VALUE_PAR", 0)
			if err != nil {
				return err
			}
			cfg := &va.PinConfig{
				Delay: g.dl, Rise: g.rf, Fall: g.rf,
				SerRes: g.serRes, InCap: g.inCap, Init: par,
			}
			var out *va.DigOut
			if s.Kind == stg.Output {
				out, err = g.mod.DigOut(s.Name, g.sup, cfg)
			} else {
				out, err = g.mod.DigNode(s.Name, g.sup, cfg)
			}
			if err != nil {
				return err
			}
			g.pars[s.ID] = par
			g.pins[s.ID] = pin{out: out}
		}
	}
	return nil
}

// state declares the token counters and ongoing cells and fills the reset
// block, both in first-reference order.
func (g *Generator) state() error {
	for _, item := range g.net.Reset {
		switch item.Kind {
		case stg.ResetSignal:
			s := g.net.Signal(item.Signal)
			g.rstIf.Then = append(g.rstIf.Then, g.pins[s.ID].out.Write(g.pars[s.ID]))
		case stg.ResetPlace:
			p := g.net.Place(item.Place)
			var init va.Expr
			if p.Marking > 0 {
				init = va.Int(p.Marking)
			}
			v, err := g.mod.IntVar("P_"+mangle(p.Name), init)
			if err != nil {
				return err
			}
			g.tokens[p.ID] = v
			g.rstIf.Then = append(g.rstIf.Then, va.Set(v, va.Int(p.Marking)))
		case stg.ResetTransition:
			t := g.net.Transition(item.Transition)
			v, err := g.mod.IntVar("T_"+mangle(t.Name), nil)
			if err != nil {
				return err
			}
			g.cells[t.ID] = v
			g.rstIf.Then = append(g.rstIf.Then, va.Set(v, va.Int(0)))
		}
	}
	return nil
}

// enabled is true when every from place holds a token.
func (g *Generator) enabled(t *stg.Transition) va.Expr {
	terms := make([]va.Expr, len(t.From))
	for i, pid := range t.From {
		terms[i] = va.Gt(g.tokens[pid], va.Int(0))
	}
	return va.All(terms...)
}

func (g *Generator) takeToken(pid stg.PlaceID) va.Stmt {
	v := g.tokens[pid]
	return va.Set(v, va.Sub(v, va.Int(1)))
}

// putToken adds one token and flags a capacity overflow. The count keeps
// the overflowed value so the violation stays observable.
func (g *Generator) putToken(pid stg.PlaceID) []va.Stmt {
	p := g.net.Place(pid)
	v := g.tokens[pid]
	return []va.Stmt{
		va.Set(v, va.Add(v, va.Int(1))),
		&va.If{Cond: va.Gt(v, va.Int(p.Capacity)), Then: []va.Stmt{
			&va.Strobe{Msg: fmt.Sprintf("%s capacity was violated", p.Name)},
			va.Set(g.errVar, va.Int(1)),
		}},
	}
}

// request consumes the input tokens and marks the transition ongoing.
func (g *Generator) request(t *stg.Transition) []va.Stmt {
	ss := []va.Stmt{va.Set(g.cells[t.ID], va.Int(1))}
	for _, pid := range t.From {
		ss = append(ss, g.takeToken(pid))
	}
	return ss
}

// commit clears the ongoing cell and delivers the output tokens.
func (g *Generator) commit(t *stg.Transition) []va.Stmt {
	ss := []va.Stmt{va.Set(g.cells[t.ID], va.Int(0))}
	for _, pid := range t.To {
		ss = append(ss, g.putToken(pid)...)
	}
	return ss
}

// fire moves tokens through in one step, for transitions with no driver
// behind them.
func (g *Generator) fire(t *stg.Transition) []va.Stmt {
	var ss []va.Stmt
	for _, pid := range t.From {
		ss = append(ss, g.takeToken(pid))
	}
	for _, pid := range t.To {
		ss = append(ss, g.putToken(pid)...)
	}
	return ss
}

// atomic fires an externally driven transition the moment its edge lands.
func (g *Generator) atomic(tid stg.TransitionID) va.Stmt {
	t := g.net.Transition(tid)
	body := g.fire(t)
	body = append(body, va.Inc(g.done))
	return &va.If{Cond: g.enabled(t), Then: body}
}

// delivery is the commit half of the firing rule for a driven signal.
func (g *Generator) delivery(tid stg.TransitionID) va.Stmt {
	t := g.net.Transition(tid)
	body := g.commit(t)
	body = append(body, va.Inc(g.done))
	return &va.If{Cond: g.cells[t.ID], Then: body}
}

func (g *Generator) checks(s *stg.Signal, e stg.Edge) []va.Stmt {
	return []va.Stmt{
		&va.If{Cond: va.Eq(g.done, va.Int(0)), Then: []va.Stmt{
			&va.Strobe{Msg: fmt.Sprintf("No transitions related to %s%s are enabled", s.Name, e)},
			va.Set(g.errVar, va.Int(1)),
		}},
		&va.If{Cond: va.Gt(g.done, va.Int(1)), Then: []va.Stmt{
			&va.Strobe{Msg: fmt.Sprintf("More than one transition fires for %s%s", s.Name, e)},
			va.Set(g.errVar, va.Int(1)),
		}},
	}
}

// commits emits the two crossing blocks per signal. Inputs fire their
// transitions atomically on the observed edge; driven signals deliver the
// tokens their requests promised. Every block ends with the liveness and
// race checks.
func (g *Generator) commits() error {
	for _, s := range g.net.Signals {
		if s.Kind == stg.Dummy {
			continue
		}
		guard := va.And(g.rst.Read(), g.sup.Powered())
		rising := &va.If{Cond: guard, Then: []va.Stmt{va.Set(g.done, va.Int(0))}}
		falling := &va.If{Cond: guard, Then: []va.Stmt{va.Set(g.done, va.Int(0))}}
		p := g.pins[s.ID]
		g.mod.Analog(
			&va.At{On: p.rising(), Body: []va.Stmt{rising}},
			&va.At{On: p.falling(), Body: []va.Stmt{falling}},
		)
		build := g.delivery
		if s.Kind == stg.Input {
			build = g.atomic
		}
		for _, e := range []stg.Edge{stg.Rise, stg.Toggle} {
			for _, tid := range s.Transitions(e) {
				rising.Then = append(rising.Then, build(tid))
			}
		}
		for _, e := range []stg.Edge{stg.Fall, stg.Toggle} {
			for _, tid := range s.Transitions(e) {
				falling.Then = append(falling.Then, build(tid))
			}
		}
		rising.Then = append(rising.Then, g.checks(s, stg.Rise)...)
		falling.Then = append(falling.Then, g.checks(s, stg.Fall)...)
	}
	return nil
}

func (g *Generator) requestBlock(s *stg.Signal, t *stg.Transition, e stg.Edge, out *va.DigOut) va.Stmt {
	body := g.request(t)
	switch e {
	case stg.Rise:
		body = append(body, &va.If{
			Cond: out.ST(),
			Then: []va.Stmt{
				&va.Strobe{Msg: fmt.Sprintf("%s failed to trigger because %s is already high", t.Name, s.Name)},
				va.Set(g.errVar, va.Int(1)),
			},
			Else: []va.Stmt{out.Write(va.Int(1))},
		})
	case stg.Fall:
		body = append(body, &va.If{
			Cond: out.ST(),
			Then: []va.Stmt{out.Write(va.Int(0))},
			Else: []va.Stmt{
				&va.Strobe{Msg: fmt.Sprintf("%s failed to trigger because %s is already low", t.Name, s.Name)},
				va.Set(g.errVar, va.Int(1)),
			},
		})
	default:
		// a toggle cannot conflict with the level it leaves
		body = append(body, out.Toggle())
	}
	body = append(body, va.Set(g.done, va.Int(0)))
	return &va.If{Cond: g.enabled(t), Then: body}
}

// cascade emits the request half of the firing rule: one bounded loop that
// keeps firing dummy and driven-signal transitions until the net settles.
func (g *Generator) cascade() error {
	var body []va.Stmt
	for _, s := range g.net.Signals {
		if s.Kind != stg.Dummy {
			continue
		}
		for _, tid := range s.Labels() {
			t := g.net.Transition(tid)
			fire := g.fire(t)
			fire = append(fire, va.Set(g.done, va.Int(0)))
			body = append(body, &va.If{Cond: g.enabled(t), Then: fire})
		}
	}
	for _, s := range g.net.Signals {
		if !s.Kind.Writable() {
			continue
		}
		out := g.pins[s.ID].out
		for _, e := range []stg.Edge{stg.Rise, stg.Fall, stg.Toggle} {
			for _, tid := range s.Transitions(e) {
				body = append(body, g.requestBlock(s, g.net.Transition(tid), e, out))
			}
		}
	}
	if len(body) > 0 {
		loop := []va.Stmt{va.Inc(g.iter), va.Set(g.done, va.Int(1))}
		loop = append(loop, body...)
		loop = append(loop, &va.If{
			Cond: va.Gt(g.iter, va.Int(maxPasses)),
			Then: []va.Stmt{&va.Fatal{Msg: stuckMsg}},
		})
		g.mod.Analog(&va.If{
			Cond: va.And(g.rst.Read(), g.sup.Powered()),
			Then: []va.Stmt{
				va.Set(g.done, va.Int(0)),
				va.Set(g.iter, va.Int(0)),
				&va.While{Cond: va.Not(g.done), Body: loop},
			},
		})
	}
	if g.opt.SeeError {
		g.mod.Analog(g.errPin.Write(g.errVar))
	}
	return nil
}
