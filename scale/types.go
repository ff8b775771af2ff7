// Package scale: the Scale object, its kinds, roles, ordering modes and
// the Registry that deduplicates scales across mappings.
package scale

import (
	"fmt"

	"github.com/vizsolve/vizsolve/dataset"
)

// Kind is the scale family.
type Kind uint8

const (
	// Categorical maps discrete categories to integer slots.
	Categorical Kind = iota
	// Linear maps a numeric [min, max] domain.
	Linear
	// Temporal maps a date [min, max] domain (stored as Unix milliseconds).
	Temporal
)

// String returns the canonical lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Linear:
		return "linear"
	case Temporal:
		return "temporal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Role is the attribute-type family a scale serves. Scales are only
// reused within one role family so a position scale never doubles as a
// color scale.
type Role uint8

const (
	// RolePosition serves positional attributes (x, y, angle, radius).
	RolePosition Role = iota
	// RoleSize serves size-like attributes (width, height, symbol size).
	RoleSize
	// RoleColor serves color attributes (fill, stroke).
	RoleColor
	// RoleText serves text attributes; plain text mappings carry no scale.
	RoleText
)

// String returns the canonical lower-case name of the role.
func (r Role) String() string {
	switch r {
	case RolePosition:
		return "position"
	case RoleSize:
		return "size"
	case RoleColor:
		return "color"
	case RoleText:
		return "text"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// OrderMode selects how a categorical domain is ordered when the column
// declares no explicit order.
type OrderMode uint8

const (
	// OrderOccurrence orders categories by first appearance in the data.
	OrderOccurrence OrderMode = iota
	// OrderAlphabetical orders categories lexicographically.
	OrderAlphabetical
	// OrderExplicit uses a caller-supplied sequence; unseen categories
	// append after it in occurrence order.
	OrderExplicit
)

// Scale maps a data domain to a visual range. The domain is either an
// ordered category list (Categorical) or a numeric [Min, Max] pair
// (Linear, Temporal; temporal bounds are Unix milliseconds).
//
// A Scale is a plain record: it serializes as-is and is shared by any
// number of mappings.
type Scale struct {
	ID         string   `json:"id" yaml:"id"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Role       Role     `json:"role" yaml:"role"`
	Table      string   `json:"table" yaml:"table"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Min        float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max        float64  `json:"max,omitempty" yaml:"max,omitempty"`
}

// CategoryIndex returns the slot index of v's string form in the
// categorical domain.
func (s *Scale) CategoryIndex(v dataset.Value) (int, bool) {
	key := v.AsString()
	for i, c := range s.Categories {
		if c == key {
			return i, true
		}
	}

	return 0, false
}

// Map resolves v into the visual range [lo, hi]. Categorical scales map
// to band centers; linear and temporal scales interpolate the domain
// onto the range. A collapsed numeric domain maps to the range midpoint.
func (s *Scale) Map(v dataset.Value, lo, hi float64) (float64, error) {
	switch s.Kind {
	case Categorical:
		i, ok := s.CategoryIndex(v)
		if !ok {
			return 0, fmt.Errorf("category %q: %w", v.AsString(), ErrUnmappable)
		}
		n := len(s.Categories)

		return lo + (float64(i)+0.5)*(hi-lo)/float64(n), nil

	default: // Linear, Temporal
		f, ok := v.AsNumber()
		if !ok {
			return 0, fmt.Errorf("non-numeric value %q on %s scale: %w", v.AsString(), s.Kind, ErrKindMismatch)
		}
		if s.Max == s.Min {
			return (lo + hi) / 2, nil
		}

		return lo + (f-s.Min)/(s.Max-s.Min)*(hi-lo), nil
	}
}

// palette is the default categorical color cycle.
var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// MapColor resolves v to a color string. Categorical scales cycle the
// default palette; numeric scales interpolate a two-stop gradient.
func (s *Scale) MapColor(v dataset.Value) (string, error) {
	if s.Kind == Categorical {
		i, ok := s.CategoryIndex(v)
		if !ok {
			return "", fmt.Errorf("category %q: %w", v.AsString(), ErrUnmappable)
		}

		return palette[i%len(palette)], nil
	}

	t, err := s.Map(v, 0, 1)
	if err != nil {
		return "", err
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return lerpHex("#DBEAFE", "#1E3A8A", t), nil
}

// lerpHex interpolates two #RRGGBB colors.
func lerpHex(a, b string, t float64) string {
	var ar, ag, ab, br, bg, bb int
	_, _ = fmt.Sscanf(a, "#%02X%02X%02X", &ar, &ag, &ab)
	_, _ = fmt.Sscanf(b, "#%02X%02X%02X", &br, &bg, &bb)
	mix := func(x, y int) int { return x + int(t*float64(y-x)) }

	return fmt.Sprintf("#%02X%02X%02X", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// AxisBinding is the axis payload generated from a scale. It carries the
// exact domain the scale computed so axis rendering and attribute
// mapping never disagree.
type AxisBinding struct {
	Expression string   `json:"expression" yaml:"expression"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	ScaleID    string   `json:"scaleId" yaml:"scaleId"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Min        float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max        float64  `json:"max,omitempty" yaml:"max,omitempty"`
}

// Axis builds the AxisBinding for this scale and the given expression.
func (s *Scale) Axis(expression string) AxisBinding {
	b := AxisBinding{Expression: expression, Kind: s.Kind, ScaleID: s.ID}
	if s.Kind == Categorical {
		b.Categories = make([]string, len(s.Categories))
		copy(b.Categories, s.Categories)
	} else {
		b.Min, b.Max = s.Min, s.Max
	}

	return b
}

// Registry holds the live scales of one chart in creation order and
// answers compatibility probes for reuse.
type Registry struct {
	order []*Scale
	index map[string]*Scale
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Scale)}
}

// Add registers s. Re-adding an id replaces the stored scale in place.
func (r *Registry) Add(s *Scale) {
	if _, seen := r.index[s.ID]; !seen {
		r.order = append(r.order, s)
	} else {
		for i, old := range r.order {
			if old.ID == s.ID {
				r.order[i] = s
				break
			}
		}
	}
	r.index[s.ID] = s
}

// Get returns the scale with the given id.
func (r *Registry) Get(id string) (*Scale, error) {
	s, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownScale)
	}

	return s, nil
}

// Has reports whether the id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]

	return ok
}

// Remove drops the scale with the given id; unknown ids are a no-op.
func (r *Registry) Remove(id string) {
	if _, ok := r.index[id]; !ok {
		return
	}
	delete(r.index, id)
	for i, s := range r.order {
		if s.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// All returns the scales in creation order. The slice is a copy; the
// scales are shared.
func (r *Registry) All() []*Scale {
	out := make([]*Scale, len(r.order))
	copy(out, r.order)

	return out
}

// findCompatible returns the first scale matching table, kind and role.
func (r *Registry) findCompatible(table string, kind Kind, role Role) *Scale {
	for _, s := range r.order {
		if s.Table == table && s.Kind == kind && s.Role == role {
			return s
		}
	}

	return nil
}
