package va

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/stg-lang/stg"
)

// writer tracks indentation and the first write error.
type writer struct {
	bw    *bufio.Writer
	depth int
	err   error
}

func (w *writer) p(format string, args ...any) {
	if w.err != nil {
		return
	}
	if _, err := w.bw.WriteString(strings.Repeat("  ", w.depth)); err != nil {
		w.err = err
		return
	}
	if _, err := fmt.Fprintf(w.bw, format, args...); err != nil {
		w.err = err
		return
	}
	w.err = w.bw.WriteByte('\n')
}

func (w *writer) blank() {
	if w.err != nil {
		return
	}
	w.err = w.bw.WriteByte('\n')
}

func (w *writer) block(ss []Stmt) {
	w.depth++
	for _, s := range ss {
		s.emit(w)
	}
	w.depth--
}

// Render writes the module as Verilog-A text.
func (m *Module) Render(out io.Writer) error {
	w := &writer{bw: bufio.NewWriter(out)}
	w.p("`include %q", "constants.vams")
	w.p("`include %q", "disciplines.vams")
	w.blank()
	names := make([]string, len(m.ports))
	for i, p := range m.ports {
		names[i] = p.name
	}
	w.p("module %s(%s);", m.Name, strings.Join(names, ", "))
	w.blank()
	for _, p := range m.ports {
		w.p("%s %s;", p.dir, p.name)
	}
	w.blank()
	for _, p := range m.ports {
		w.p("electrical %s;", p.name)
	}
	for _, n := range m.nodes {
		w.p("electrical %s;", n)
	}
	if len(m.params) > 0 {
		w.blank()
	}
	for _, p := range m.params {
		w.p("parameter %s %s = %s;", p.kind, p.name, p.def)
	}
	if len(m.vars) > 0 {
		w.blank()
	}
	for _, v := range m.vars {
		w.p("integer %s;", v.name)
	}
	w.blank()
	w.p("analog begin")
	w.depth++
	if inits := m.initials(); len(inits) > 0 {
		w.p("@(initial_step) begin")
		w.block(inits)
		w.p("end")
	}
	for _, s := range m.analog {
		s.emit(w)
	}
	w.depth--
	w.p("end")
	w.blank()
	w.p("endmodule")
	if w.err != nil {
		return w.err
	}
	return w.bw.Flush()
}

// initials collects the initial step assignments in declaration order.
func (m *Module) initials() []Stmt {
	var ss []Stmt
	for _, v := range m.vars {
		if v.init != nil {
			ss = append(ss, &Assign{LHS: Ident(v.name), RHS: v.init})
		}
	}
	return ss
}

// Service renders modules behind the Flusher interface.
type Service struct{}

var _ stg.Flusher[*Module] = (*Service)(nil)

func (Service) Flush(w io.Writer, m *Module) error { return m.Render(w) }
