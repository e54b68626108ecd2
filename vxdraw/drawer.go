// Package vxdraw renders placements with the terminal's own graphics
// protocol (kitty or sixel) through vaxis, for setups where no ueberzug
// process is available or wanted. Decoded images and terminal uploads are
// cached per source path; uploads which go unused are destroyed after a few
// render passes.
package vxdraw

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"sync"

	// Formats we can hand to the terminal. GIFs render their first frame
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"git.sr.ht/~rockorager/vaxis"

	"github.com/ueberlay/ueberlay"
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

// evictAfter is the number of render passes an upload may go unused before
// its terminal-side memory is released
const evictAfter = 32

// Drawer implements [ueberlay.Drawer] on top of the vaxis graphics API.
// Because terminal placements only exist within a render, the drawer redraws
// every shown placement on each batch flush; vaxis dedupes unchanged
// placements terminal-side
type Drawer struct {
	vx       *vaxis.Vaxis
	newImage func(image.Image) (vaxis.Image, error)

	mu     sync.Mutex
	images map[string]*upload
	shown  map[string]ueberlay.Rect
	paths  map[string]string
	pass   uint64
	depth  int
}

// upload is a terminal-side image keyed by source path
type upload struct {
	img      vaxis.Image
	w        int
	h        int
	lastPass uint64
}

// New returns a Drawer for terminals with graphics support. New fails when vx
// reports no usable graphics protocol
func New(vx *vaxis.Vaxis) (*Drawer, error) {
	if !vx.CanDisplayGraphics() {
		return nil, fmt.Errorf("terminal reports no graphics protocol")
	}
	return &Drawer{
		vx:       vx,
		newImage: vx.NewImage,
		images:   make(map[string]*upload),
		shown:    make(map[string]ueberlay.Rect),
		paths:    make(map[string]string),
	}, nil
}

// Show decodes and uploads the placement's image if needed, resizes it to the
// placement rect, and records it for the next flush
func (d *Drawer) Show(p *ueberlay.Placement) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	up, err := d.load(p.Path)
	if err != nil {
		return err
	}
	if up.w != p.Width || up.h != p.Height {
		// Resize encodes in the background and triggers a redraw when
		// it lands; Draw is a no-op until then
		up.img.Resize(p.Width, p.Height)
		up.w = p.Width
		up.h = p.Height
	}
	d.shown[p.Identifier] = ueberlay.Rect{
		Col:    p.X,
		Row:    p.Y,
		Width:  p.Width,
		Height: p.Height,
	}
	d.paths[p.Identifier] = p.Path
	return nil
}

// Hide drops the placement. The terminal-side deletion happens on the next
// vaxis render, the upload sticks around for a while in case the placement
// comes back
func (d *Drawer) Hide(identifier string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.shown, identifier)
	delete(d.paths, identifier)
	return nil
}

// Batch invokes fn, then queues every shown placement into the current vaxis
// render pass. Nested batches flush once
func (d *Drawer) Batch(fn func() error) error {
	d.mu.Lock()
	d.depth += 1
	d.mu.Unlock()

	ferr := fn()

	d.mu.Lock()
	d.depth -= 1
	if d.depth == 0 {
		d.flush()
	}
	d.mu.Unlock()
	return ferr
}

// Close destroys every upload held by the drawer
func (d *Drawer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, up := range d.images {
		up.img.Destroy()
		delete(d.images, path)
	}
	d.shown = make(map[string]ueberlay.Rect)
	d.paths = make(map[string]string)
	return nil
}

// load returns the upload for path, decoding and uploading on first use.
// d.mu must be held
func (d *Drawer) load(path string) (*upload, error) {
	if up, ok := d.images[path]; ok {
		return up, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	vimg, err := d.newImage(img)
	if err != nil {
		return nil, fmt.Errorf("upload image %s: %w", path, err)
	}
	log.Debug("uploaded image", "path", path, "format", format)
	up := &upload{img: vimg, lastPass: d.pass}
	d.images[path] = up
	return up, nil
}

// flush draws every shown placement and evicts stale uploads. d.mu must be
// held
func (d *Drawer) flush() {
	d.pass += 1

	var win vaxis.Window
	if d.vx != nil {
		win = d.vx.Window()
	}
	for id, rect := range d.shown {
		up, ok := d.images[d.paths[id]]
		if !ok {
			continue
		}
		up.lastPass = d.pass
		if d.vx != nil {
			up.img.Draw(win.New(rect.Col, rect.Row, rect.Width, rect.Height))
		}
	}
	for path, up := range d.images {
		if d.pass-up.lastPass > evictAfter {
			log.Debug("evicting stale upload", "path", path)
			up.img.Destroy()
			delete(d.images, path)
		}
	}
}

var _ ueberlay.Drawer = (*Drawer)(nil)
