// Package gfile parses the textual .g description of a signal transition
// graph into a flat syntax tree. The tree keeps source order and line
// numbers; structural interpretation (name resolution, implicit places,
// validation) happens in the builder.
package gfile

import (
	"io"

	"github.com/stg-lang/stg"
)

// File is the parsed form of a .g source.
type File struct {
	Model string

	// Signal declarations in source order, one slice per section kind.
	Inputs    []string
	Outputs   []string
	Internals []string
	Dummies   []string

	// HasGraph records that a .graph section appeared, even an empty one.
	HasGraph bool
	Lines    []ArcLine

	Markings   []Override
	Capacities []Override
}

// ArcLine is one line of a .graph section: a source token followed by zero
// or more destination tokens.
type ArcLine struct {
	From string
	To   []string
	Line int
}

// Override is a .marking or .capacity entry. Bracketed pair entries such as
// <a+,b+> are stored with the brackets stripped, so the name matches the
// implicit place it selects.
type Override struct {
	Name     string
	HasValue bool
	Value    int
	Line     int
}

// Service loads .g files.
type Service struct{}

var _ stg.Loader[*File] = (*Service)(nil)

func (s *Service) Load(r io.Reader) (*File, error) { return Parse(r) }
