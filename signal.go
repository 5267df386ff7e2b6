package stg

// Kind classifies a signal after user remapping has been applied.
type Kind int

const (
	Input Kind = iota
	Output
	Internal
	Dummy
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	case Internal:
		return "internal"
	case Dummy:
		return "dummy"
	}
	return "unknown"
}

// Writable reports whether transitions of this signal drive the signal
// themselves. Writable signals fire in two phases: a request that starts
// driving the signal, and a commit when the driven edge is observed.
func (k Kind) Writable() bool { return k == Output || k == Internal }

// Edge is the direction of a signal transition.
type Edge int

const (
	Rise Edge = iota
	Fall
	Toggle

	numEdges = 3
)

func (e Edge) String() string {
	switch e {
	case Rise:
		return "+"
	case Fall:
		return "-"
	case Toggle:
		return "~"
	}
	return "?"
}

// ParseEdge maps an edge marker to its Edge.
func ParseEdge(mark string) (Edge, bool) {
	switch mark {
	case "+":
		return Rise, true
	case "-":
		return Fall, true
	case "~":
		return Toggle, true
	}
	return 0, false
}

// Signal is a declared signal of the graph. Non-dummy signals keep their
// transitions grouped per edge; dummy signals key transitions by label only.
type Signal struct {
	ID   SignalID
	Name string
	Kind Kind

	edges  [numEdges][]TransitionID
	labels []TransitionID
}

func (s *Signal) String() string { return s.Name }

// Transitions returns the transitions labeled with the given edge of the
// signal, in first-reference order.
func (s *Signal) Transitions(e Edge) []TransitionID { return s.edges[e] }

// Labels returns a dummy signal's transitions in first-reference order.
func (s *Signal) Labels() []TransitionID { return s.labels }
