package stg

import (
	"fmt"
	"io"
)

// SignalID, PlaceID and TransitionID are handles into a Net's arenas. All
// cross references between entities are handles, so the structures stay
// acyclic and the arenas own everything.
type (
	SignalID     int
	PlaceID      int
	TransitionID int
)

// ResetKind selects which entity a ResetItem initializes.
type ResetKind int

const (
	ResetSignal ResetKind = iota
	ResetPlace
	ResetTransition
)

// ResetItem records one initialization performed while the model is held in
// reset: a writable signal driven to its reset value, a place set to its
// marking, or an ongoing cell cleared. Items are kept in first-reference
// order.
type ResetItem struct {
	Kind       ResetKind
	Signal     SignalID
	Place      PlaceID
	Transition TransitionID
}

// Net is a signal transition graph. It is populated by a builder and read
// only afterwards.
type Net struct {
	Name string

	Signals     []*Signal
	Places      []*Place
	Transitions []*Transition

	// Reset is the ordered initialization sequence for the net's state.
	Reset []ResetItem

	signals     map[string]SignalID
	places      map[string]PlaceID
	transitions map[string]TransitionID
}

func NewNet(name string) *Net {
	return &Net{
		Name:        name,
		signals:     make(map[string]SignalID),
		places:      make(map[string]PlaceID),
		transitions: make(map[string]TransitionID),
	}
}

func (n *Net) Signal(id SignalID) *Signal { return n.Signals[id] }

func (n *Net) Place(id PlaceID) *Place { return n.Places[id] }

func (n *Net) Transition(id TransitionID) *Transition { return n.Transitions[id] }

func (n *Net) SignalNamed(name string) (*Signal, bool) {
	id, ok := n.signals[name]
	if !ok {
		return nil, false
	}
	return n.Signals[id], true
}

func (n *Net) PlaceNamed(name string) (*Place, bool) {
	id, ok := n.places[name]
	if !ok {
		return nil, false
	}
	return n.Places[id], true
}

func (n *Net) TransitionNamed(name string) (*Transition, bool) {
	id, ok := n.transitions[name]
	if !ok {
		return nil, false
	}
	return n.Transitions[id], true
}

// AddSignal registers a signal under its effective kind. Each name may be
// declared once across all kinds.
func (n *Net) AddSignal(name string, kind Kind) (*Signal, error) {
	if _, ok := n.signals[name]; ok {
		return nil, fmt.Errorf("duplicated signal %s", name)
	}
	s := &Signal{ID: SignalID(len(n.Signals)), Name: name, Kind: kind}
	n.Signals = append(n.Signals, s)
	n.signals[name] = s.ID
	if kind.Writable() {
		n.Reset = append(n.Reset, ResetItem{Kind: ResetSignal, Signal: s.ID})
	}
	return s, nil
}

func (n *Net) AddPlace(name string, marking, capacity int, implicit bool) (*Place, error) {
	if _, ok := n.places[name]; ok {
		return nil, fmt.Errorf("duplicated place %s", name)
	}
	p := &Place{
		ID:       PlaceID(len(n.Places)),
		Name:     name,
		Marking:  marking,
		Capacity: capacity,
		Implicit: implicit,
	}
	n.Places = append(n.Places, p)
	n.places[name] = p.ID
	n.Reset = append(n.Reset, ResetItem{Kind: ResetPlace, Place: p.ID})
	return p, nil
}

// AddTransition registers a transition of the given signal. The name is the
// full token text. Dummy-signal transitions are keyed by label; the edge is
// recorded but carries no meaning for them.
func (n *Net) AddTransition(name string, sig *Signal, edge Edge) (*Transition, error) {
	if _, ok := n.transitions[name]; ok {
		return nil, fmt.Errorf("duplicated transition %s", name)
	}
	t := &Transition{
		ID:     TransitionID(len(n.Transitions)),
		Name:   name,
		Signal: sig.ID,
		Edge:   edge,
	}
	n.Transitions = append(n.Transitions, t)
	n.transitions[name] = t.ID
	if sig.Kind == Dummy {
		sig.labels = append(sig.labels, t.ID)
	} else {
		sig.edges[edge] = append(sig.edges[edge], t.ID)
	}
	if sig.Kind.Writable() {
		n.Reset = append(n.Reset, ResetItem{Kind: ResetTransition, Transition: t.ID})
	}
	return t, nil
}

// ConnectPT adds an arc from a place to a transition. Repeated arcs stack:
// a transition listed twice consumes two tokens.
func (n *Net) ConnectPT(p *Place, t *Transition) {
	p.Out = append(p.Out, t.ID)
	t.From = append(t.From, p.ID)
}

// ConnectTP adds an arc from a transition to a place.
func (n *Net) ConnectTP(t *Transition, p *Place) {
	t.To = append(t.To, p.ID)
	p.In = append(p.In, t.ID)
}

// Arcs enumerates every arc of the net in a stable order.
func (n *Net) Arcs() []Arc {
	var arcs []Arc
	for _, t := range n.Transitions {
		for _, pid := range t.From {
			arcs = append(arcs, Arc{Src: n.Places[pid], Dest: t})
		}
		for _, pid := range t.To {
			arcs = append(arcs, Arc{Src: t, Dest: n.Places[pid]})
		}
	}
	return arcs
}

type Loader[T any] interface {
	Load(io.Reader) (T, error)
}

type Flusher[T any] interface {
	Flush(io.Writer, T) error
}
