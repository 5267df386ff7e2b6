package stg

// Place holds tokens. Implicit places are synthesized between two directly
// connected transitions and named "<from>,<to>".
type Place struct {
	ID       PlaceID
	Name     string
	Marking  int
	Capacity int
	Implicit bool

	// In and Out list the transitions connected to the place, in the
	// order the arcs were declared.
	In  []TransitionID
	Out []TransitionID
}

func (p *Place) NodeKind() NodeKind { return PlaceNode }

func (p *Place) String() string { return p.Name }
