package ueberlay

import (
	"sort"

	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// walkSurfaces traverses the composited surface tree rooted at s, visiting
// every surface owned by an [Image] widget. col and row are the absolute
// origin of s; clip is the rectangle of s which is actually visible after
// clipping by every ancestor.
//
// For each placeholder, visit receives the absolute rectangle the placeholder
// laid out at and the portion of it that survives clipping. Children are
// visited in paint order (ascending z-index, then insertion order), the same
// order vxfw composites them, so later visits paint over earlier ones.
func walkSurfaces(s vxfw.Surface, col int, row int, clip Rect, visit func(img *Image, abs Rect, visible Rect)) {
	if img, ok := s.Widget.(*Image); ok {
		abs := Rect{
			Col:    col,
			Row:    row,
			Width:  int(s.Size.Width),
			Height: int(s.Size.Height),
		}
		visit(img, abs, abs.Intersect(clip))
	}

	if len(s.Children) == 0 {
		return
	}
	// Sort a copy: vxfw sorts the surface's own slice during render, and we
	// walk before that happens
	children := make([]vxfw.SubSurface, len(s.Children))
	copy(children, s.Children)
	sort.SliceStable(children, func(i int, j int) bool {
		return children[i].ZIndex < children[j].ZIndex
	})

	for _, child := range children {
		childCol := col + child.Origin.Col
		childRow := row + child.Origin.Row
		bounds := Rect{
			Col:    childCol,
			Row:    childRow,
			Width:  int(child.Surface.Size.Width),
			Height: int(child.Surface.Size.Height),
		}
		// A child is clipped both by its ancestors and by its own
		// bounds. Negative origins (children shifted up or left of
		// their parent, as produced by scrolled viewports) fall out of
		// the same intersection
		childClip := clip.Intersect(bounds)
		if childClip.Empty() {
			continue
		}
		walkSurfaces(child.Surface, childCol, childRow, childClip, visit)
	}
}
