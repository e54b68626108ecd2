package ueberlay

import "fmt"

// Rect is a rectangle of terminal cells. Col and Row are the origin, relative
// to whatever the rectangle was measured against: for rects produced by a
// [Container] walk, that is the container's own origin
type Rect struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Empty reports whether r covers no cells
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the overlap of r and o. If the rectangles don't overlap,
// the result is empty
func (r Rect) Intersect(o Rect) Rect {
	col := max(r.Col, o.Col)
	row := max(r.Row, o.Row)
	right := min(r.Col+r.Width, o.Col+o.Width)
	bottom := min(r.Row+r.Height, o.Row+o.Height)
	if right <= col || bottom <= row {
		return Rect{}
	}
	return Rect{
		Col:    col,
		Row:    row,
		Width:  right - col,
		Height: bottom - row,
	}
}

// Contains reports whether o lies entirely within r
func (r Rect) Contains(o Rect) bool {
	return o.Col >= r.Col &&
		o.Row >= r.Row &&
		o.Col+o.Width <= r.Col+r.Width &&
		o.Row+o.Height <= r.Row+r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d+%dx%d", r.Col, r.Row, r.Width, r.Height)
}
