// Package ueberlay overlays terminal-native graphics on top of a vxfw widget
// tree. The package doesn't rasterize anything itself: an [Image] widget marks
// the spot in the tree where a picture belongs, and a [Container] at the root
// of the tree walks the composited surface tree after every layout pass,
// works out the absolute cell rectangle each placeholder landed on, and tells
// a [Drawer] which placements to show, move, or hide. Drawers are provided for
// an ueberzug/ueberzugpp subprocess (package uzug) and for terminals with
// native graphics support (package vxdraw).
package ueberlay

import (
	"io"
	"log/slog"
)

var log = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger sets the logger used by this package. By default all logs are
// discarded
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	log = l
}

// Visibility is the visibility of a placement, or of every placement managed
// by a [Container]. The zero value is Invisible: a placement is not on screen
// until a container has reconciled it
type Visibility int

const (
	Invisible Visibility = iota
	Visible
)

// ClipMode is the policy for placeholders which are only partially visible,
// for example an image row scrolled halfway out of a list viewport. An
// external drawer can position and scale an image but it cannot crop one, so
// a partially clipped placement either disappears entirely or is redrawn
// within the smaller visible rectangle
type ClipMode int

const (
	// ClipHides hides a placement unless its placeholder is fully visible.
	// This is the default: a shrunken image is usually more jarring than a
	// missing one
	ClipHides ClipMode = iota
	// ClipFits repositions the placement to the visible portion of its
	// placeholder and lets the drawer's scaler fit the image into it
	ClipFits
)
