// Package catalog validates that named visual, layout, color, and dimension
// resources resolve and load in the current environment, and derives the
// action a caller should take when some do not.
package catalog

// Kind categorizes a resource descriptor.
type Kind int

// Resource kinds, closed set.
const (
	KindVisual Kind = iota
	KindLayout
	KindColor
	KindDimension
)

// Kinds lists every resource kind in declaration order.
var Kinds = []Kind{KindVisual, KindLayout, KindColor, KindDimension}

// MarshalText renders the kind by name, also making it usable as a JSON map
// key.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindVisual:
		return "visual"
	case KindLayout:
		return "layout"
	case KindColor:
		return "color"
	case KindDimension:
		return "dimension"
	default:
		return "unknown"
	}
}

// Descriptor names a resource expected to resolve in the current environment.
// Descriptors are immutable and defined at compile time per domain.
type Descriptor struct {
	Name string
	Kind Kind
}
