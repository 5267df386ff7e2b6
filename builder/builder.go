// Package builder turns a parsed .g file into a validated signal transition
// graph. All name resolution is cached per build, so the same token text
// always yields the same entity.
package builder

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stg-lang/stg"
	"github.com/stg-lang/stg/gfile"
	"go.uber.org/zap"
)

// Config controls how declared signal kinds map to effective kinds. Dummies
// always stay dummies and inputs always stay inputs.
type Config struct {
	// OutputKind is the effective kind for .outputs signals: Output, or
	// Input to treat the whole graph as externally driven.
	OutputKind stg.Kind
	// InternalKind is the effective kind for .internal signals: Internal
	// keeps them as hidden driven nodes, Output exposes them as ports,
	// Input treats them as externally driven.
	InternalKind stg.Kind

	Logger *zap.Logger
}

func DefaultConfig() *Config {
	return &Config{OutputKind: stg.Output, InternalKind: stg.Internal}
}

func (c *Config) check() error {
	if c.OutputKind != stg.Output && c.OutputKind != stg.Input {
		return fmt.Errorf("outputs cannot be treated as %s signals", c.OutputKind)
	}
	switch c.InternalKind {
	case stg.Internal, stg.Output, stg.Input:
		return nil
	}
	return fmt.Errorf("internals cannot be treated as %s signals", c.InternalKind)
}

type Builder struct {
	cfg *Config
	log *zap.Logger
}

func New(cfg *Config) *Builder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{cfg: cfg, log: log}
}

// Build is shorthand for New(cfg).Build(f).
func Build(f *gfile.File, cfg *Config) (*stg.Net, error) {
	return New(cfg).Build(f)
}

// Build constructs the net. Any structural defect aborts the build with a
// single descriptive error and no partial result.
func (b *Builder) Build(f *gfile.File) (*stg.Net, error) {
	if err := b.cfg.check(); err != nil {
		return nil, err
	}
	if f.Model == "" {
		return nil, errors.New("missing model name")
	}
	r := &run{
		net:        stg.NewNet(f.Model),
		log:        b.log.With(zap.String("build", uuid.NewString())),
		markings:   make(map[string]int),
		capacities: make(map[string]int),
		used:       make(map[string]bool),
	}
	if err := r.signals(f, b.cfg); err != nil {
		return nil, err
	}
	if err := r.overrides(f); err != nil {
		return nil, err
	}
	if err := r.graph(f); err != nil {
		return nil, err
	}
	r.finish()
	return r.net, nil
}

// run is the build-scoped registry: the net under construction plus the
// override tables feeding place creation.
type run struct {
	net        *stg.Net
	log        *zap.Logger
	markings   map[string]int
	capacities map[string]int
	used       map[string]bool
}

// signals registers every declared signal under its effective kind. The
// registration order is fixed as outputs, inputs, internals, dummies, source
// order within each section; everything downstream that iterates signals
// inherits this order.
func (r *run) signals(f *gfile.File, cfg *Config) error {
	sections := []struct {
		names []string
		kind  stg.Kind
	}{
		{f.Outputs, cfg.OutputKind},
		{f.Inputs, stg.Input},
		{f.Internals, cfg.InternalKind},
		{f.Dummies, stg.Dummy},
	}
	ports := 0
	for _, sec := range sections {
		for _, name := range sec.names {
			if _, err := r.net.AddSignal(name, sec.kind); err != nil {
				return err
			}
			if sec.kind == stg.Input || sec.kind == stg.Output {
				ports++
			}
		}
	}
	if ports == 0 {
		return errors.New("there is no input or output signals")
	}
	r.log.Debug("signals registered", zap.Int("count", len(r.net.Signals)), zap.Int("ports", ports))
	return nil
}

func (r *run) overrides(f *gfile.File) error {
	for _, ov := range f.Capacities {
		if _, dup := r.capacities[ov.Name]; dup {
			return fmt.Errorf("duplicated capacity for %s", ov.Name)
		}
		if !ov.HasValue {
			return fmt.Errorf("capacity of %s needs a value", ov.Name)
		}
		if ov.Value < 1 {
			return fmt.Errorf("capacity of %s must be positive", ov.Name)
		}
		r.capacities[ov.Name] = ov.Value
	}
	for _, ov := range f.Markings {
		if _, dup := r.markings[ov.Name]; dup {
			return fmt.Errorf("duplicated marking for %s", ov.Name)
		}
		v := 1
		if ov.HasValue {
			v = ov.Value
		}
		if v < 0 {
			return fmt.Errorf("marking of %s cannot be negative", ov.Name)
		}
		r.markings[ov.Name] = v
	}
	return nil
}

func (r *run) graph(f *gfile.File) error {
	if !f.HasGraph {
		return errors.New("no graph declaration was found")
	}
	if len(f.Lines) == 0 {
		return errors.New("the graph has no arcs")
	}
	for _, line := range f.Lines {
		from, err := r.resolve(line.From)
		if err != nil {
			return fmt.Errorf("line %d: %w", line.Line, err)
		}
		for _, tok := range line.To {
			to, err := r.resolve(tok)
			if err != nil {
				return fmt.Errorf("line %d: %w", line.Line, err)
			}
			if err := r.connect(from, to); err != nil {
				return fmt.Errorf("line %d: %w", line.Line, err)
			}
		}
	}
	return nil
}

// connect wires one arc. An arc between two transitions is spliced through
// an implicit place named "<from>,<to>"; repeating the pair reuses it.
func (r *run) connect(from, to stg.Node) error {
	switch src := from.(type) {
	case *stg.Place:
		dst, ok := to.(*stg.Transition)
		if !ok {
			return fmt.Errorf("there can't be an arc from place %q to place %q", from, to)
		}
		r.net.ConnectPT(src, dst)
	case *stg.Transition:
		switch dst := to.(type) {
		case *stg.Place:
			r.net.ConnectTP(src, dst)
		case *stg.Transition:
			imp, err := r.place(src.Name+","+dst.Name, true)
			if err != nil {
				return err
			}
			r.net.ConnectTP(src, imp)
			r.net.ConnectPT(imp, dst)
		}
	}
	return nil
}

func (r *run) finish() {
	for name := range r.markings {
		if !r.used["m:"+name] {
			r.log.Warn("marking names an unknown place", zap.String("place", name))
		}
	}
	for name := range r.capacities {
		if !r.used["c:"+name] {
			r.log.Warn("capacity names an unknown place", zap.String("place", name))
		}
	}
	r.log.Info("net built",
		zap.String("model", r.net.Name),
		zap.Int("signals", len(r.net.Signals)),
		zap.Int("places", len(r.net.Places)),
		zap.Int("transitions", len(r.net.Transitions)),
	)
}
