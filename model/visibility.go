package model

import "image/color"

// LayerVisibility is a per-session override of layer visibility, passed to
// Render separately from the (otherwise mostly-immutable) Document, per
// spec.md §6 and design note 9 ("per-session state is explicit and passed
// to render").
type LayerVisibility map[LayerKey]bool

// LayerColors is a per-session override of layer display color.
type LayerColors map[LayerKey]color.RGBA

// Visible reports whether key should render, defaulting to the document's
// own layer visibility flag when no override is present.
func (v LayerVisibility) Visible(doc *Document, key LayerKey) bool {
	if override, ok := v[key]; ok {
		return override
	}
	if l, ok := doc.Layers[key]; ok {
		return l.Visible()
	}
	return true
}

// Color returns the override color for key, falling back to the document's
// own layer color.
func (c LayerColors) Color(doc *Document, key LayerKey) color.RGBA {
	if override, ok := c[key]; ok {
		return override
	}
	if l, ok := doc.Layers[key]; ok {
		return l.Color()
	}
	return DefaultLayerColor(key)
}
