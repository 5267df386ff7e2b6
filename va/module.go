package va

import (
	"fmt"
	"strconv"
)

// Dir is a port direction.
type Dir int

const (
	In Dir = iota
	Out
	InOut
)

func (d Dir) String() string {
	switch d {
	case In:
		return "input"
	case Out:
		return "output"
	}
	return "inout"
}

type port struct {
	name string
	dir  Dir
}

type param struct {
	name string
	kind string
	def  string
}

type variable struct {
	name string
	init Expr
}

// Module is one Verilog-A module under assembly. Declarations keep their
// insertion order and every identifier, the module name included, must be
// unique.
type Module struct {
	Name   string
	ports  []port
	nodes  []string
	params []param
	vars   []variable
	analog []Stmt
	names  map[string]bool
}

func NewModule(name string) *Module {
	return &Module{Name: name, names: map[string]bool{name: true}}
}

func (m *Module) declare(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	if m.names[name] {
		return fmt.Errorf("identifier %s is already taken", name)
	}
	m.names[name] = true
	return nil
}

// Port declares an electrical module port.
func (m *Module) Port(name string, dir Dir) error {
	if err := m.declare(name); err != nil {
		return err
	}
	m.ports = append(m.ports, port{name: name, dir: dir})
	return nil
}

// Node declares an internal electrical node.
func (m *Module) Node(name string) error {
	if err := m.declare(name); err != nil {
		return err
	}
	m.nodes = append(m.nodes, name)
	return nil
}

// RealParam declares a real parameter. The default is kept as literal text
// so values like 100e-12 render exactly as given.
func (m *Module) RealParam(name, def string) (Ident, error) {
	if err := m.declare(name); err != nil {
		return "", err
	}
	m.params = append(m.params, param{name: name, kind: "real", def: def})
	return Ident(name), nil
}

// IntParam declares an integer parameter.
func (m *Module) IntParam(name string, def int) (Ident, error) {
	if err := m.declare(name); err != nil {
		return "", err
	}
	m.params = append(m.params, param{name: name, kind: "integer", def: strconv.Itoa(def)})
	return Ident(name), nil
}

// IntVar declares an integer variable. A non-nil init is assigned on the
// initial step; analog variables otherwise start at zero.
func (m *Module) IntVar(name string, init Expr) (Ident, error) {
	if err := m.declare(name); err != nil {
		return "", err
	}
	m.vars = append(m.vars, variable{name: name, init: init})
	return Ident(name), nil
}

// Analog appends statements to the analog block.
func (m *Module) Analog(ss ...Stmt) {
	m.analog = append(m.analog, ss...)
}
