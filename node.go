package stg

type NodeKind int

const (
	PlaceNode NodeKind = iota
	TransitionNode
)

// Node is either a *Place or a *Transition.
type Node interface {
	NodeKind() NodeKind
	String() string
}

// Arc is a directed connection between a place and a transition.
type Arc struct {
	Src  Node
	Dest Node
}

func (a Arc) String() string { return a.Src.String() + " -> " + a.Dest.String() }
