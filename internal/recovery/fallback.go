package recovery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ComponentKind is the closed set of component families the coordinator can
// synthesize fallbacks for. Adding a kind without a row in fallbackTable is
// caught by TestFallbackTableComplete.
type ComponentKind int

const (
	KindGeneric ComponentKind = iota
	KindCard
	KindList
	KindBanner
	KindBadge
	KindGlassPanel
	KindStatusBar
)

// ComponentKinds lists every component kind.
var ComponentKinds = []ComponentKind{
	KindGeneric, KindCard, KindList, KindBanner, KindBadge, KindGlassPanel, KindStatusBar,
}

// String returns the lowercase name of the kind.
func (k ComponentKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindCard:
		return "card"
	case KindList:
		return "list"
	case KindBanner:
		return "banner"
	case KindBadge:
		return "badge"
	case KindGlassPanel:
		return "glass_panel"
	case KindStatusBar:
		return "status_bar"
	default:
		return "unknown"
	}
}

// Style describes how a Renderable should be treated by the rendering layer.
type Style int

const (
	// StyleSimplified keeps the component's function with reduced visuals.
	StyleSimplified Style = iota

	// StylePlaceholder replaces the component with an inert stand-in.
	StylePlaceholder

	// StyleStatusMessage is a plain, non-mutating text representation used
	// when the UI tree must not be touched.
	StyleStatusMessage
)

// MarshalJSON renders the style by name.
func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// String returns the lowercase name of the style.
func (s Style) String() string {
	switch s {
	case StyleSimplified:
		return "simplified"
	case StylePlaceholder:
		return "placeholder"
	case StyleStatusMessage:
		return "status_message"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind by name.
func (k ComponentKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Renderable is the representation handed back to the rendering layer. The
// engine always returns one; it never returns nothing.
type Renderable struct {
	ComponentID string        `json:"component_id"`
	Kind        ComponentKind `json:"kind"`
	Tier        string        `json:"tier"`
	Style       Style         `json:"style"`
	Message     string        `json:"message,omitempty"`

	// Mutating reports whether applying this representation requires a
	// structural mutation of the live UI tree.
	Mutating bool `json:"mutating"`
}

// RetryFn is a caller-supplied closure that re-attempts the failed operation
// and returns its renderable on success, nil otherwise.
type RetryFn func() *Renderable

// fallbackTable maps every component kind to its fallback constructor. The
// table is exhaustive over ComponentKinds; completeness is asserted by test.
var fallbackTable = map[ComponentKind]func(componentID, tier string) Renderable{
	KindGeneric: func(id, tier string) Renderable {
		return newFallback(id, KindGeneric, tier, StylePlaceholder, "content unavailable")
	},
	KindCard: func(id, tier string) Renderable {
		return newFallback(id, KindCard, tier, StyleSimplified, "card rendered without decoration")
	},
	KindList: func(id, tier string) Renderable {
		return newFallback(id, KindList, tier, StyleSimplified, "list rendered as plain rows")
	},
	KindBanner: func(id, tier string) Renderable {
		return newFallback(id, KindBanner, tier, StylePlaceholder, "banner hidden")
	},
	KindBadge: func(id, tier string) Renderable {
		return newFallback(id, KindBadge, tier, StylePlaceholder, "badge hidden")
	},
	KindGlassPanel: func(id, tier string) Renderable {
		return newFallback(id, KindGlassPanel, tier, StyleSimplified, "glass panel rendered as solid surface")
	},
	KindStatusBar: func(id, tier string) Renderable {
		return newFallback(id, KindStatusBar, tier, StyleSimplified, "status bar rendered without effects")
	},
}

func newFallback(id string, kind ComponentKind, tier string, style Style, msg string) Renderable {
	return Renderable{
		ComponentID: id,
		Kind:        kind,
		Tier:        tier,
		Style:       style,
		Message:     msg,
		Mutating:    true,
	}
}

// FallbackFor synthesizes the deterministic fallback representation for a
// component kind at a tier. An unmapped kind gets the generic placeholder.
func FallbackFor(kind ComponentKind, componentID, tier string) Renderable {
	ctor, ok := fallbackTable[kind]
	if !ok {
		ctor = fallbackTable[KindGeneric]
	}
	return ctor(componentID, tier)
}

// StatusRenderable builds the non-mutating plain-text representation used
// when the UI tree must not be touched. It is the only fallback with
// Mutating == false.
func StatusRenderable(componentID, tier, message string) Renderable {
	return Renderable{
		ComponentID: componentID,
		Kind:        KindGeneric,
		Tier:        tier,
		Style:       StyleStatusMessage,
		Message:     message,
		Mutating:    false,
	}
}

// KindFromID derives a component kind from a component id by its prefix,
// e.g. "card.home.hero" -> KindCard, "glass.sidebar" -> KindGlassPanel.
func KindFromID(componentID string) ComponentKind {
	prefix, _, _ := strings.Cut(componentID, ".")
	switch prefix {
	case "card":
		return KindCard
	case "list":
		return KindList
	case "banner":
		return KindBanner
	case "badge":
		return KindBadge
	case "glass":
		return KindGlassPanel
	case "statusbar":
		return KindStatusBar
	default:
		return KindGeneric
	}
}

// unavailableMessage is the minimal user-visible failure mode: inert, but
// still something on screen.
func unavailableMessage(componentID string) string {
	return fmt.Sprintf("%s is temporarily unavailable", componentID)
}
