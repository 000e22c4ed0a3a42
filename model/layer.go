package model

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"sync"

	"golang.org/x/image/colornames"
)

// LayerKey pairs a GDSII layer number with a datatype, per spec.md §3.
type LayerKey struct {
	Layer    uint8
	Datatype uint8
}

// String renders the key the way GDS tooling usually reports it.
func (k LayerKey) String() string { return fmt.Sprintf("%d/%d", k.Layer, k.Datatype) }

// Layer carries the display color, visibility, and optional name for a
// (layer, datatype) pair. It is the one part of model.Document that stays
// mutable after load.
type Layer struct {
	mu      sync.RWMutex
	Key     LayerKey
	color   color.RGBA
	visible bool
	Name    string
}

// NewLayer builds a layer with the deterministic default color for Key.
func NewLayer(key LayerKey) *Layer {
	return &Layer{Key: key, color: DefaultLayerColor(key), visible: true}
}

// Color returns the layer's current sRGB display color.
func (l *Layer) Color() color.RGBA {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

// SetColor updates the layer's display color; safe for concurrent use since
// the UI controller and the renderer observe it from different frames.
func (l *Layer) SetColor(c color.RGBA) {
	l.mu.Lock()
	l.color = c
	l.mu.Unlock()
}

// Visible reports the layer's current visibility flag.
func (l *Layer) Visible() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.visible
}

// SetVisible updates the layer's visibility flag.
func (l *Layer) SetVisible(v bool) {
	l.mu.Lock()
	l.visible = v
	l.mu.Unlock()
}

// namedPalette is the deterministic color source for auto-created layers
// and DXF layer-name hashing (spec.md §3 invariant 5, §6): one named,
// reproducible table instead of two ad-hoc literal color arrays.
var namedPalette = []color.RGBA{
	colornames.Deepskyblue, colornames.Orangered, colornames.Mediumseagreen,
	colornames.Gold, colornames.Orchid, colornames.Turquoise, colornames.Tomato,
	colornames.Cornflowerblue, colornames.Yellowgreen, colornames.Hotpink,
	colornames.Khaki, colornames.Slateblue, colornames.Salmon,
	colornames.Springgreen, colornames.Plum, colornames.Sandybrown,
}

// DefaultLayerColor deterministically maps a LayerKey onto the named
// palette, per spec.md §3 invariant 5 ("missing entries are auto-created
// with a deterministic default color").
func DefaultLayerColor(key LayerKey) color.RGBA {
	return namedPalette[paletteIndex([]byte{key.Layer, key.Datatype})]
}

// DefaultColorForName deterministically maps a DXF layer name onto the
// named palette, per spec.md §6 ("a deterministic color derived from the
// name's hash").
func DefaultColorForName(name string) color.RGBA {
	return namedPalette[paletteIndex([]byte(name))]
}

func paletteIndex(key []byte) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(len(namedPalette)))
}
