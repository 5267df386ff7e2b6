package va

// Supply is the vdd/gnd pair every digital primitive references.
type Supply struct {
	Vdd string
	Gnd string
}

// Supply declares the supply pair as inout ports, ground first.
func (m *Module) Supply(vdd, gnd string) (*Supply, error) {
	if err := m.Port(gnd, InOut); err != nil {
		return nil, err
	}
	if err := m.Port(vdd, InOut); err != nil {
		return nil, err
	}
	return &Supply{Vdd: vdd, Gnd: gnd}, nil
}

// Volt probes the supply voltage.
func (s *Supply) Volt() Expr { return V(s.Vdd, s.Gnd) }

// Powered is true while the supply is up.
func (s *Supply) Powered() Expr { return Gt(s.Volt(), Real(0.05)) }

func (s *Supply) half() Expr { return Div(s.Volt(), Int(2)) }

// crossing is zero when the pin sits exactly at half supply.
func crossing(pin string, s *Supply) Expr { return Sub(V(pin, s.Gnd), s.half()) }

// DigIn is a digital input pin: a threshold read plus crossing events and
// an input capacitance load.
type DigIn struct {
	Pin string
	sup *Supply
}

// DigIn declares a digital input port. inCap, when non-nil, loads the pin.
func (m *Module) DigIn(name string, s *Supply, inCap Expr) (*DigIn, error) {
	if err := m.Port(name, In); err != nil {
		return nil, err
	}
	if inCap != nil {
		m.Analog(&Contrib{
			Target: I(name, s.Gnd),
			RHS:    Mul(inCap, Call{Fn: "ddt", Args: []Expr{V(name, s.Gnd)}}),
		})
	}
	return &DigIn{Pin: name, sup: s}, nil
}

// Read is true while the pin sits above half supply.
func (d *DigIn) Read() Expr { return Gt(V(d.Pin, d.sup.Gnd), d.sup.half()) }

func (d *DigIn) Rising() Event  { return Event{Zero: crossing(d.Pin, d.sup), Dir: 1} }
func (d *DigIn) Falling() Event { return Event{Zero: crossing(d.Pin, d.sup), Dir: -1} }
func (d *DigIn) Edges() Event   { return Event{Zero: crossing(d.Pin, d.sup), Dir: 0} }

// PinConfig shapes the electrical side of a driven pin or node.
type PinConfig struct {
	Delay  Expr // transition delay
	Rise   Expr // rise time
	Fall   Expr // fall time
	SerRes Expr // series resistance between driver and pin; nil drives the pin directly
	InCap  Expr // capacitive load on the pin; nil for none
	Init   Expr // drive state on the initial step; nil starts low
}

// DigOut is a driven digital pin or node. The drive state is an integer
// variable; the electrical pin follows it one transition delay later, so a
// state write becomes an observable edge, not an instant level.
type DigOut struct {
	Pin string
	drv string
	st  Ident
	sup *Supply
}

// DigOut declares a driven digital output port.
func (m *Module) DigOut(name string, s *Supply, cfg *PinConfig) (*DigOut, error) {
	if err := m.Port(name, Out); err != nil {
		return nil, err
	}
	return m.drive(name, s, cfg)
}

// DigNode declares a driven node that is not exposed as a port.
func (m *Module) DigNode(name string, s *Supply, cfg *PinConfig) (*DigOut, error) {
	if err := m.Node(name); err != nil {
		return nil, err
	}
	return m.drive(name, s, cfg)
}

func (m *Module) drive(name string, s *Supply, cfg *PinConfig) (*DigOut, error) {
	st, err := m.IntVar(name+"$st", cfg.Init)
	if err != nil {
		return nil, err
	}
	drv := name
	if cfg.SerRes != nil {
		drv = name + "$drv"
		if err := m.Node(drv); err != nil {
			return nil, err
		}
	}
	m.Analog(&Contrib{
		Target: V(drv, s.Gnd),
		RHS:    Call{Fn: "transition", Args: []Expr{Mul(st, s.Volt()), cfg.Delay, cfg.Rise, cfg.Fall}},
	})
	if cfg.SerRes != nil {
		m.Analog(&Contrib{Target: I(drv, name), RHS: Div(V(drv, name), cfg.SerRes)})
	}
	if cfg.InCap != nil {
		m.Analog(&Contrib{
			Target: I(name, s.Gnd),
			RHS:    Mul(cfg.InCap, Call{Fn: "ddt", Args: []Expr{V(name, s.Gnd)}}),
		})
	}
	return &DigOut{Pin: name, drv: drv, st: st, sup: s}, nil
}

// ST is the drive state variable.
func (d *DigOut) ST() Ident { return d.st }

// Write sets the drive state.
func (d *DigOut) Write(x Expr) Stmt { return &Assign{LHS: d.st, RHS: x} }

// Toggle flips the drive state.
func (d *DigOut) Toggle() Stmt { return &Assign{LHS: d.st, RHS: Not(d.st)} }

func (d *DigOut) Rising() Event  { return Event{Zero: crossing(d.Pin, d.sup), Dir: 1} }
func (d *DigOut) Falling() Event { return Event{Zero: crossing(d.Pin, d.sup), Dir: -1} }
