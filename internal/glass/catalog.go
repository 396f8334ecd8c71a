// Package glass validates the resource set behind the glass-effect visual
// subsystem and recommends a degradation tier from what is missing.
package glass

import "github.com/renderguard/renderguard/internal/catalog"

// Resource names owned by the glass subsystem.
const (
	ResBlurOverlay      = "glass.visual.blur_overlay"
	ResHighlightSheen   = "glass.visual.highlight_sheen"
	ResNoiseTexture     = "glass.visual.noise_texture"
	ResPanelLayout      = "glass.layout.panel"
	ResCardLayout       = "glass.layout.card"
	ResTintPrimary      = "glass.color.tint_primary"
	ResTintSecondary    = "glass.color.tint_secondary"
	ResBorderColor      = "glass.color.border"
	ResCornerRadius     = "glass.dimension.corner_radius"
	ResBlurRadius       = "glass.dimension.blur_radius"
	ResPanelElevation   = "glass.dimension.panel_elevation"
	ResHighlightOpacity = "glass.dimension.highlight_opacity"
)

// Catalog returns the fixed descriptor set for the glass subsystem.
func Catalog() []catalog.Descriptor {
	return []catalog.Descriptor{
		{Name: ResBlurOverlay, Kind: catalog.KindVisual},
		{Name: ResHighlightSheen, Kind: catalog.KindVisual},
		{Name: ResNoiseTexture, Kind: catalog.KindVisual},
		{Name: ResPanelLayout, Kind: catalog.KindLayout},
		{Name: ResCardLayout, Kind: catalog.KindLayout},
		{Name: ResTintPrimary, Kind: catalog.KindColor},
		{Name: ResTintSecondary, Kind: catalog.KindColor},
		{Name: ResBorderColor, Kind: catalog.KindColor},
		{Name: ResCornerRadius, Kind: catalog.KindDimension},
		{Name: ResBlurRadius, Kind: catalog.KindDimension},
		{Name: ResPanelElevation, Kind: catalog.KindDimension},
		{Name: ResHighlightOpacity, Kind: catalog.KindDimension},
	}
}

// Fallbacks maps every catalog entry to its replacement. The mapping is
// exhaustive over Catalog; completeness is enforced by a test so an unmapped
// entry fails the build pipeline rather than surfacing at runtime.
func Fallbacks() map[string]string {
	return map[string]string{
		ResBlurOverlay:      "common.visual.scrim_solid",
		ResHighlightSheen:   "common.visual.none",
		ResNoiseTexture:     "common.visual.none",
		ResPanelLayout:      "common.layout.panel_flat",
		ResCardLayout:       "common.layout.card_flat",
		ResTintPrimary:      "common.color.surface",
		ResTintSecondary:    "common.color.surface_variant",
		ResBorderColor:      "common.color.outline",
		ResCornerRadius:     "common.dimension.corner_radius_none",
		ResBlurRadius:       "common.dimension.zero",
		ResPanelElevation:   "common.dimension.zero",
		ResHighlightOpacity: "common.dimension.zero",
	}
}
