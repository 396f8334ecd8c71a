package catalog_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/platform"
)

func newValidator(t *testing.T, resolver platform.Resolver, fallbacks map[string]string) *catalog.Validator {
	t.Helper()
	return catalog.NewValidator(catalog.ValidatorConfig{
		Resolver:  resolver,
		Fallbacks: fallbacks,
		Logger:    zerolog.Nop(),
	})
}

func TestValidate_AllAvailable(t *testing.T) {
	resolver := platform.NewStaticResolver()
	resolver.Register("visual.a", "layout.b", "color.c")

	v := newValidator(t, resolver, nil)
	report := v.Validate([]catalog.Descriptor{
		{Name: "visual.a", Kind: catalog.KindVisual},
		{Name: "layout.b", Kind: catalog.KindLayout},
		{Name: "color.c", Kind: catalog.KindColor},
	})

	assert.True(t, report.AllAvailable)
	assert.Equal(t, 0, report.MissingCount())
	assert.Equal(t, catalog.ProceedNormal, report.RecommendedAction)
}

func TestValidate_LoadFailureCountsAsMissing(t *testing.T) {
	resolver := platform.NewStaticResolver()
	resolver.RegisterBroken("visual.a", errors.New("decode failed"))

	v := newValidator(t, resolver, nil)
	report := v.Validate([]catalog.Descriptor{
		{Name: "visual.a", Kind: catalog.KindVisual},
	})

	assert.False(t, report.AllAvailable)
	assert.Equal(t, []string{"visual.a"}, report.MissingByKind[catalog.KindVisual])
}

// panickyResource throws on load, which must be indistinguishable from a
// missing resource.
type panickyResource struct{}

func (panickyResource) Load() error { panic("corrupt resource data") }

type panickyResolver struct{}

func (panickyResolver) Resolve(string) (platform.Resource, error) {
	return panickyResource{}, nil
}

func TestValidate_LoadPanicCountsAsMissing(t *testing.T) {
	v := newValidator(t, panickyResolver{}, nil)

	report := v.Validate([]catalog.Descriptor{
		{Name: "visual.a", Kind: catalog.KindVisual},
	})

	assert.False(t, report.AllAvailable)
	assert.Equal(t, 1, report.MissingCount())
}

func TestValidate_RecommendedAction(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		missing   []catalog.Descriptor
		fallbacks map[string]string
		want      catalog.Action
	}{
		{
			name: "fallbacks for everything missing",
			missing: []catalog.Descriptor{
				{Name: "visual.a", Kind: catalog.KindVisual},
				{Name: "color.b", Kind: catalog.KindColor},
			},
			fallbacks: map[string]string{"visual.a": "visual.plain", "color.b": "color.plain"},
			want:      catalog.UseFallbackUI,
		},
		{
			name: "layout missing means emergency",
			missing: []catalog.Descriptor{
				{Name: "layout.a", Kind: catalog.KindLayout},
			},
			fallbacks: map[string]string{"layout.a": "layout.plain"},
			want:      catalog.UseEmergencyUI,
		},
		{
			name: "missing without fallback means abort",
			missing: []catalog.Descriptor{
				{Name: "visual.a", Kind: catalog.KindVisual},
				{Name: "visual.b", Kind: catalog.KindVisual},
			},
			fallbacks: map[string]string{"visual.a": "visual.plain"},
			want:      catalog.Abort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := platform.NewStaticResolver()
			resolver.Register(tt.available...)

			v := newValidator(t, resolver, tt.fallbacks)
			report := v.Validate(tt.missing)

			assert.Equal(t, tt.want, report.RecommendedAction)
		})
	}
}

func TestValidate_FallbacksAvailable(t *testing.T) {
	resolver := platform.NewStaticResolver()

	v := newValidator(t, resolver, map[string]string{"visual.a": "visual.plain"})
	report := v.Validate([]catalog.Descriptor{
		{Name: "visual.a", Kind: catalog.KindVisual},
		{Name: "visual.b", Kind: catalog.KindVisual},
	})

	require.Equal(t, 2, report.MissingCount())
	assert.Equal(t, 1, report.FallbacksAvailable)
}

func TestValidate_FreshReportEachCall(t *testing.T) {
	resolver := platform.NewStaticResolver()
	v := newValidator(t, resolver, nil)

	descs := []catalog.Descriptor{{Name: "visual.a", Kind: catalog.KindVisual}}
	first := v.Validate(descs)

	resolver.Register("visual.a")
	second := v.Validate(descs)

	assert.False(t, first.AllAvailable)
	assert.True(t, second.AllAvailable)
}
