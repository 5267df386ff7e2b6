package stg

// Transition is a signal edge occurrence. Its name is the literal token text
// from the source, so "a+" and "a+/1" are distinct transitions of the same
// signal and edge.
type Transition struct {
	ID     TransitionID
	Name   string
	Signal SignalID
	Edge   Edge

	// From and To list the connected places in declaration order. A
	// transition is enabled when every From place holds a token.
	From []PlaceID
	To   []PlaceID
}

func (t *Transition) NodeKind() NodeKind { return TransitionNode }

func (t *Transition) String() string { return t.Name }
