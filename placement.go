package ueberlay

// Placement is a single image placement managed by a [Drawer]. The identifier
// names the placement on the drawer side; two placements with the same
// identifier refer to the same drawer-side slot. X, Y, Width and Height are in
// cells and are written by the [Container] on every reconcile pass, so the
// geometry a drawer sees is always the geometry of the last render
type Placement struct {
	// Identifier uniquely names this placement within its drawer
	Identifier string
	// Path is the image source on disk
	Path string
	// Scaler names the drawer-side scaling algorithm. An empty scaler lets
	// the drawer pick its default
	Scaler string

	// Cell geometry of the placeholder, relative to the container which
	// manages this placement
	X      int
	Y      int
	Width  int
	Height int

	// Visibility of this placement as of the last reconcile
	Visibility Visibility
}

// Drawer displays placements. Implementations must tolerate Hide calls for
// identifiers they have never shown
type Drawer interface {
	// Show displays p at its current geometry, replacing any placement
	// previously shown under the same identifier
	Show(p *Placement) error
	// Hide removes the placement with the given identifier
	Hide(identifier string) error
	// Batch invokes fn and flushes every command issued within it as one
	// atomic repaint
	Batch(fn func() error) error
}
