// Package graphviz draws signal transition graphs. Places render as
// circles, transitions as boxes, and implicit places are dashed.
package graphviz

import (
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/stg-lang/stg"
)

var _ stg.Flusher[*stg.Net] = (*Writer)(nil)

type Writer struct {
	*Config
	g       *cgraph.Graph
	mapping map[stg.Node]*cgraph.Node
}

// placeLabel carries the marking and capacity when either differs from the
// defaults, so a drawn net shows its initial state.
func placeLabel(p *stg.Place) string {
	if p.Marking == 0 && p.Capacity == 1 {
		return p.Name
	}
	return fmt.Sprintf("%s %d/%d", p.Name, p.Marking, p.Capacity)
}

func (w *Writer) writePlace(i int, p *stg.Place) error {
	node, err := w.g.CreateNode(fmt.Sprintf("p%d", i))
	if err != nil {
		return err
	}
	node.SetShape(cgraph.CircleShape)
	node.SetLabel(placeLabel(p))
	node.Set("fontname", string(w.Font))
	if p.Implicit {
		node.Set("style", "dashed")
	}
	w.mapping[p] = node
	return nil
}

func (w *Writer) writeTransition(i int, t *stg.Transition) error {
	node, err := w.g.CreateNode(fmt.Sprintf("t%d", i))
	if err != nil {
		return err
	}
	node.SetShape(cgraph.BoxShape)
	node.SetLabel(t.Name)
	node.Set("fontname", string(w.Font))
	w.mapping[t] = node
	return nil
}

func (w *Writer) writeArc(i int, a stg.Arc) error {
	src := w.mapping[a.Src]
	dst := w.mapping[a.Dest]
	_, err := w.g.CreateEdge(fmt.Sprintf("a%d", i), src, dst)
	return err
}

func (w *Writer) Flush(out io.Writer, n *stg.Net) error {
	graph := graphviz.New()
	defer func() {
		_ = graph.Close()
	}()
	g, err := graph.Graph()
	if err != nil {
		return err
	}
	g.SetRankDir(cgraph.RankDir(w.RankDir))
	w.g = g
	for i, p := range n.Places {
		if err := w.writePlace(i, p); err != nil {
			return err
		}
	}
	for i, t := range n.Transitions {
		if err := w.writeTransition(i, t); err != nil {
			return err
		}
	}
	for i, a := range n.Arcs() {
		if err := w.writeArc(i, a); err != nil {
			return err
		}
	}
	return graph.Render(w.g, w.format(), out)
}

func (w *Writer) format() graphviz.Format {
	if w.Format == "" {
		return graphviz.XDOT
	}
	return graphviz.Format(w.Format)
}

type Font string

func (f Font) Or(other Font) Font {
	return f + "," + other
}

const (
	Helvetica  Font = "Helvetica"
	Arial      Font = "Arial"
	Roboto     Font = "Roboto"
	Montserrat Font = "Montserrat"
	SansSerif  Font = "sans-serif"
	Serif      Font = "Serif"
	Times      Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	RightToLeft RankDir = "RL"
	TopToBottom RankDir = "TB"
	BottomToTop RankDir = "BT"
)

type Config struct {
	Name   string
	Format string // graphviz render format; empty means xdot text
	Font
	RankDir
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "stg"
	}
	return &Writer{
		Config:  config,
		mapping: make(map[stg.Node]*cgraph.Node),
	}
}
