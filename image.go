package ueberlay

import (
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Image reserves the area of its child widget for an image placement. The
// child renders as usual (typically a border, a caption, or just empty cells
// for the picture to cover); the enclosing [Container] finds the surface this
// widget produced during its tree walk and positions the placement over it.
//
// An Image outside of a Container renders its child and nothing else.
type Image struct {
	Placement *Placement
	Child     vxfw.Widget
}

// NewImage wraps child with an image placement
func NewImage(p *Placement, child vxfw.Widget) *Image {
	return &Image{
		Placement: p,
		Child:     child,
	}
}

func (img *Image) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	inner, err := img.Child.Draw(ctx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	// The placement covers whatever the child laid out as
	img.Placement.Width = int(inner.Size.Width)
	img.Placement.Height = int(inner.Size.Height)

	// Return a surface owned by this widget so the container walk can
	// recognize it, with the child composited at our origin
	s := vxfw.NewSurface(inner.Size.Width, inner.Size.Height, img)
	s.AddChild(0, 0, inner)
	return s, nil
}
