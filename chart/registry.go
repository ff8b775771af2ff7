package chart

import (
	"fmt"
	"sort"

	"github.com/vizsolve/vizsolve/scale"
)

// AttrSpec declares one attribute of an element class: its name, value
// type, the scale role used when a data mapping is dropped on it, a
// default, and whether the solver owns it.
type AttrSpec struct {
	Name string
	// Kind is the attribute's value kind.
	Kind AttrKind
	// Role picks the scale kind when the attribute is data-mapped.
	Role scale.Role
	// Default seeds the attribute before solving. Ignored for
	// non-numeric attributes; those use DefaultStr.
	Default    float64
	DefaultStr string
	// Solvable marks attributes the constraint solver may adjust.
	// Non-solvable attributes resolve directly from their mapping.
	Solvable bool
}

// AttrTerm is one coefficient of an intrinsic linear constraint.
type AttrTerm struct {
	Attribute string
	Coeff     float64
}

// IntrinsicConstraint is one hard linear relation a class maintains
// among its own attributes: sum(Coeff_i * attr_i) = Constant.
type IntrinsicConstraint struct {
	Terms    []AttrTerm
	Constant float64
}

// Class is the polymorphic behavior of an element class: its attribute
// schema, defaults and intrinsic constraints.
type Class interface {
	// ID returns the class identifier ("mark.rect", "plot-segment.cartesian", ...).
	ID() string
	// Attributes returns the attribute schema in declaration order.
	Attributes() []AttrSpec
	// DefaultProperties returns the class's property defaults.
	DefaultProperties() Properties
	// Constraints returns the intrinsic constraints among the class's
	// attributes (e.g. cx = (x1+x2)/2 for a rect). Properties feed
	// constants such as plot-segment margins.
	Constraints(props Properties) []IntrinsicConstraint
}

// classRegistry maps class ids to constructors so charts can be rebuilt
// from serialized specifications.
type classRegistry struct {
	classes map[string]Class
}

func newClassRegistry() *classRegistry {
	return &classRegistry{classes: make(map[string]Class)}
}

// register panics on duplicate ids: class registration is programmer
// territory, not user input.
func (r *classRegistry) register(c Class) {
	if _, dup := r.classes[c.ID()]; dup {
		panic(fmt.Sprintf("chart: duplicate class id %q", c.ID()))
	}
	r.classes[c.ID()] = c
}

// lookup resolves a class id; ErrUnknownClass when absent.
func (r *classRegistry) lookup(id string) (Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, fmt.Errorf("chart: class %q: %w", id, ErrUnknownClass)
	}

	return c, nil
}

// ids returns the registered class ids, sorted.
func (r *classRegistry) ids() []string {
	out := make([]string, 0, len(r.classes))
	for id := range r.classes {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// attrSpec finds one attribute of a class schema, or nil.
func attrSpec(c Class, name string) *AttrSpec {
	for _, a := range c.Attributes() {
		if a.Name == name {
			spec := a

			return &spec
		}
	}

	return nil
}

// defaultAttributes seeds a fresh attribute map from a class schema.
func defaultAttributes(c Class) Attributes {
	out := make(Attributes, len(c.Attributes()))
	for _, a := range c.Attributes() {
		switch a.Kind {
		case AttrNumber:
			out[a.Name] = NumberValue(a.Default)
		case AttrString:
			out[a.Name] = StringValue(a.DefaultStr)
		case AttrVector:
			out[a.Name] = VectorValue(nil)
		}
	}

	return out
}
