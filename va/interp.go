package va

import (
	"errors"
	"fmt"
	"strconv"
)

// errFatal unwinds statement execution after a $fatal.
var errFatal = errors.New("fatal")

const (
	maxWhile  = 100000
	maxEvents = 100000
)

type event struct {
	t    float64
	seq  int
	node string
	v    float64
}

type driver struct {
	node  string
	level Expr
	delay Expr
	cur   float64
}

// Interp executes a module's event semantics in-process. It understands the
// electrical idioms the digital primitives emit: a transition contribution
// becomes a delayed voltage step, a series resistor forwards the driven node
// to its pin, capacitive loads are ignored. At blocks run when their
// crossing expression changes sign in the watched direction; every other
// analog statement runs on every pass.
type Interp struct {
	mod     *Module
	params  map[Ident]float64
	vars    map[Ident]float64
	peaks   map[Ident]float64
	volts   map[string]float64
	alias   map[string]string
	drivers []*driver
	ats     []*At
	queue   []event
	seq     int
	now     float64
	started bool
	fatal   string
	strobes []string
}

func NewInterp(m *Module) (*Interp, error) {
	ip := &Interp{
		mod:    m,
		params: make(map[Ident]float64),
		vars:   make(map[Ident]float64),
		peaks:  make(map[Ident]float64),
		volts:  make(map[string]float64),
		alias:  make(map[string]string),
	}
	for _, p := range m.params {
		v, err := strconv.ParseFloat(p.def, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.name, err)
		}
		ip.params[Ident(p.name)] = v
	}
	for _, v := range m.vars {
		ip.vars[Ident(v.name)] = 0
	}
	for _, s := range m.analog {
		switch st := s.(type) {
		case *At:
			ip.ats = append(ip.ats, st)
		case *Contrib:
			if err := ip.wire(st); err != nil {
				return nil, err
			}
		}
	}
	return ip, nil
}

// wire classifies one contribution.
func (ip *Interp) wire(c *Contrib) error {
	switch c.Target.Fn {
	case "V":
		call, ok := c.RHS.(Call)
		if !ok || call.Fn != "transition" || len(call.Args) < 2 {
			return fmt.Errorf("unsupported contribution to %s", c.Target)
		}
		ip.drivers = append(ip.drivers, &driver{
			node:  c.Target.Plus,
			level: call.Args[0],
			delay: call.Args[1],
		})
	case "I":
		if bin, ok := c.RHS.(Binary); ok && bin.Op == "/" {
			ip.alias[c.Target.Plus] = c.Target.Minus
		}
		// capacitive loads carry no event semantics
	default:
		return fmt.Errorf("unsupported contribution to %s", c.Target)
	}
	return nil
}

// Drive forces a node voltage, taking effect on the next Run.
func (ip *Interp) Drive(node string, v float64) {
	ip.push(event{t: ip.now, node: node, v: v})
}

func (ip *Interp) push(e event) {
	e.seq = ip.seq
	ip.seq++
	ip.queue = append(ip.queue, e)
}

func (ip *Interp) pop() event {
	best := 0
	for i := 1; i < len(ip.queue); i++ {
		e, b := ip.queue[i], ip.queue[best]
		if e.t < b.t || (e.t == b.t && e.seq < b.seq) {
			best = i
		}
	}
	e := ip.queue[best]
	ip.queue = append(ip.queue[:best], ip.queue[best+1:]...)
	return e
}

// Run processes pending events until the module settles or a $fatal stops
// it. A fatal is a simulation outcome, not a Run failure; check Fatal.
func (ip *Interp) Run() error {
	if !ip.started {
		ip.started = true
		for _, s := range ip.mod.initials() {
			if err := ip.exec(s); err != nil {
				return err
			}
		}
	}
	for steps := 0; len(ip.queue) > 0 && ip.fatal == ""; steps++ {
		if steps >= maxEvents {
			return fmt.Errorf("event queue did not drain after %d events", maxEvents)
		}
		e := ip.pop()
		ip.now = e.t
		before := ip.zeroes()
		ip.volts[e.node] = e.v
		if pin, ok := ip.alias[e.node]; ok {
			ip.volts[pin] = e.v
		}
		after := ip.zeroes()
		if err := ip.pass(before, after); err != nil {
			if errors.Is(err, errFatal) {
				ip.queue = nil
				return nil
			}
			return err
		}
	}
	return nil
}

// zeroes samples every At crossing expression.
func (ip *Interp) zeroes() []float64 {
	zs := make([]float64, len(ip.ats))
	for i, at := range ip.ats {
		v, err := ip.eval(at.On.Zero)
		if err != nil {
			v = 0
		}
		zs[i] = v
	}
	return zs
}

func crossed(dir int, before, after float64) bool {
	rising := before <= 0 && after > 0
	falling := before >= 0 && after < 0
	switch {
	case dir > 0:
		return rising
	case dir < 0:
		return falling
	}
	return rising || falling
}

// pass runs one analog evaluation: triggered At blocks fire, continuous
// statements always run, then drivers schedule follow-up events.
func (ip *Interp) pass(before, after []float64) error {
	ati := 0
	for _, s := range ip.mod.analog {
		switch st := s.(type) {
		case *At:
			hit := crossed(st.On.Dir, before[ati], after[ati])
			ati++
			if !hit {
				continue
			}
			for _, b := range st.Body {
				if err := ip.exec(b); err != nil {
					return err
				}
			}
		case *Contrib:
		default:
			if err := ip.exec(st); err != nil {
				return err
			}
		}
	}
	return ip.updateDrivers()
}

func (ip *Interp) updateDrivers() error {
	for _, d := range ip.drivers {
		lvl, err := ip.eval(d.level)
		if err != nil {
			return err
		}
		if lvl == d.cur {
			continue
		}
		d.cur = lvl
		delay, err := ip.eval(d.delay)
		if err != nil {
			return err
		}
		ip.push(event{t: ip.now + delay, node: d.node, v: lvl})
	}
	return nil
}

func (ip *Interp) exec(s Stmt) error {
	switch st := s.(type) {
	case *Assign:
		v, err := ip.eval(st.RHS)
		if err != nil {
			return err
		}
		ip.setVar(st.LHS, v)
	case *If:
		c, err := ip.eval(st.Cond)
		if err != nil {
			return err
		}
		body := st.Then
		if c == 0 {
			body = st.Else
		}
		for _, b := range body {
			if err := ip.exec(b); err != nil {
				return err
			}
		}
	case *While:
		for n := 0; ; n++ {
			c, err := ip.eval(st.Cond)
			if err != nil {
				return err
			}
			if c == 0 {
				break
			}
			if n >= maxWhile {
				return fmt.Errorf("while (%s) did not settle", st.Cond)
			}
			for _, b := range st.Body {
				if err := ip.exec(b); err != nil {
					return err
				}
			}
		}
	case *Strobe:
		ip.strobes = append(ip.strobes, st.Msg)
	case *Fatal:
		ip.fatal = st.Msg
		return errFatal
	case *At:
		return fmt.Errorf("nested event block")
	case *Contrib:
		return fmt.Errorf("nested contribution")
	default:
		return fmt.Errorf("unknown statement %T", s)
	}
	return nil
}

func (ip *Interp) setVar(name Ident, v float64) {
	ip.vars[name] = v
	if v > ip.peaks[name] {
		ip.peaks[name] = v
	}
}

func (ip *Interp) eval(e Expr) (float64, error) {
	switch x := e.(type) {
	case Ident:
		if v, ok := ip.vars[x]; ok {
			return v, nil
		}
		if v, ok := ip.params[x]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown identifier %s", x)
	case Int:
		return float64(x), nil
	case Real:
		return float64(x), nil
	case Probe:
		if x.Fn != "V" {
			return 0, fmt.Errorf("cannot evaluate %s", x)
		}
		return ip.volts[x.Plus] - ip.volts[x.Minus], nil
	case Unary:
		v, err := ip.eval(x.X)
		if err != nil {
			return 0, err
		}
		if x.Op == "-" {
			return -v, nil
		}
		return b2f(v == 0), nil
	case Binary:
		l, err := ip.eval(x.L)
		if err != nil {
			return 0, err
		}
		r, err := ip.eval(x.R)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case "&&":
			return b2f(l != 0 && r != 0), nil
		case "||":
			return b2f(l != 0 || r != 0), nil
		case "+":
			return l + r, nil
		case "-":
			return l - r, nil
		case "*":
			return l * r, nil
		case "/":
			return l / r, nil
		case ">":
			return b2f(l > r), nil
		case "<":
			return b2f(l < r), nil
		case ">=":
			return b2f(l >= r), nil
		case "==":
			return b2f(l == r), nil
		case "!=":
			return b2f(l != r), nil
		}
		return 0, fmt.Errorf("unknown operator %s", x.Op)
	case Select:
		c, err := ip.eval(x.Cond)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return ip.eval(x.Then)
		}
		return ip.eval(x.Else)
	}
	return 0, fmt.Errorf("cannot evaluate %T", e)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Var reads a variable.
func (ip *Interp) Var(name string) float64 { return ip.vars[Ident(name)] }

// Peak is the highest value a variable has held.
func (ip *Interp) Peak(name string) float64 { return ip.peaks[Ident(name)] }

// Volt reads a node voltage.
func (ip *Interp) Volt(node string) float64 { return ip.volts[node] }

// Strobes lists every diagnostic printed so far.
func (ip *Interp) Strobes() []string { return ip.strobes }

// Fatal is the abort message, empty while the simulation is healthy.
func (ip *Interp) Fatal() string { return ip.fatal }
