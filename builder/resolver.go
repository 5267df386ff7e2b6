package builder

import (
	"fmt"
	"regexp"

	"github.com/stg-lang/stg"
)

// tokenRE splits a graph token into a signal base, an optional edge marker,
// and an optional /k instance suffix. Tokens that do not match, or whose
// base names no declared signal, fall through to the place namespace.
var tokenRE = regexp.MustCompile(`^([A-Za-z_][A-Za-z_0-9]*)([+~-])?(/[0-9]+)?$`)

var placeRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9+~/-]*$`)

// resolve maps one graph token to its node, creating it on first sight.
// Places and transitions live in separate namespaces keyed by the full
// token text, so a repeated token always comes back from the cache.
func (r *run) resolve(tok string) (stg.Node, error) {
	if m := tokenRE.FindStringSubmatch(tok); m != nil {
		if sig, ok := r.net.SignalNamed(m[1]); ok {
			return r.transition(tok, sig, m[2])
		}
	}
	if !placeRE.MatchString(tok) {
		return nil, fmt.Errorf("malformed token %q", tok)
	}
	return r.place(tok, false)
}

// transition returns the transition for a signal-based token. Dummies take
// labels with or without an edge marker; for every other kind the marker is
// what names the transition, so it cannot be left out.
func (r *run) transition(tok string, sig *stg.Signal, mark string) (*stg.Transition, error) {
	if t, ok := r.net.TransitionNamed(tok); ok {
		return t, nil
	}
	edge, marked := stg.ParseEdge(mark)
	if !marked {
		if sig.Kind != stg.Dummy {
			return nil, fmt.Errorf("malformed token %q: signal %s needs an edge marker", tok, sig.Name)
		}
		edge = stg.Rise
	}
	return r.net.AddTransition(tok, sig, edge)
}

// place returns the named place, creating it with its override marking and
// capacity on first sight. Defaults are zero tokens and capacity one.
func (r *run) place(name string, implicit bool) (*stg.Place, error) {
	if p, ok := r.net.PlaceNamed(name); ok {
		return p, nil
	}
	marking := 0
	if v, ok := r.markings[name]; ok {
		marking = v
		r.used["m:"+name] = true
	}
	capacity := 1
	if v, ok := r.capacities[name]; ok {
		capacity = v
		r.used["c:"+name] = true
	}
	return r.net.AddPlace(name, marking, capacity, implicit)
}
