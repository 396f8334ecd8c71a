package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackTableComplete(t *testing.T) {
	for _, kind := range ComponentKinds {
		_, ok := fallbackTable[kind]
		assert.True(t, ok, "no fallback constructor for kind %s", kind)
	}
	assert.Len(t, fallbackTable, len(ComponentKinds))
}

func TestFallbackFor_Deterministic(t *testing.T) {
	a := FallbackFor(KindCard, "card.summary", "reduced")
	b := FallbackFor(KindCard, "card.summary", "reduced")

	assert.Equal(t, a, b)
	assert.Equal(t, "card.summary", a.ComponentID)
	assert.Equal(t, KindCard, a.Kind)
	assert.Equal(t, "reduced", a.Tier)
	assert.True(t, a.Mutating)
}

func TestFallbackFor_UnmappedKindGetsGenericPlaceholder(t *testing.T) {
	r := FallbackFor(ComponentKind(99), "mystery.widget", "fallback")

	assert.Equal(t, KindGeneric, r.Kind)
	assert.Equal(t, StylePlaceholder, r.Style)
	assert.Equal(t, "mystery.widget", r.ComponentID)
}

func TestStatusRenderable_NeverMutates(t *testing.T) {
	r := StatusRenderable("card.summary", "failed", "card.summary is temporarily unavailable")

	assert.False(t, r.Mutating)
	assert.Equal(t, StyleStatusMessage, r.Style)
	assert.Equal(t, "failed", r.Tier)
	assert.NotEmpty(t, r.Message)
}

func TestKindFromID(t *testing.T) {
	tests := []struct {
		id   string
		want ComponentKind
	}{
		{"card.home.hero", KindCard},
		{"list.feed", KindList},
		{"banner.promo", KindBanner},
		{"badge.unread_count", KindBadge},
		{"glass.sidebar", KindGlassPanel},
		{"statusbar.main", KindStatusBar},
		{"widget.custom", KindGeneric},
		{"noprefix", KindGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindFromID(tt.id), "id %s", tt.id)
	}
}
