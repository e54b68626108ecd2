package ueberlay

import (
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Container manages the placements of every [Image] widget below it. It must
// wrap the root of the widget tree: the rectangles it computes are relative to
// its own origin, so a container drawn anywhere else reports coordinates
// relative to itself rather than the screen.
//
// On every Draw the container renders its child, walks the resulting surface
// tree accumulating child origins and clipping rectangles, and reconciles the
// set of visible placeholders against the previous pass. The drawer receives
// one Show per placement that appeared or moved, one Hide per placement that
// disappeared, and nothing for placements whose geometry is unchanged. All
// commands for a pass are issued inside a single [Drawer] batch.
type Container struct {
	Child vxfw.Widget
	// ClipMode is the policy for partially visible placeholders
	ClipMode ClipMode

	drawer     Drawer
	visibility Visibility
	last       map[string]shownState
	shown      map[string]*Placement
}

// shownState is what the drawer currently displays for a placement. A show
// command is only issued when the state a placeholder resolves to differs
type shownState struct {
	rect   Rect
	path   string
	scaler string
}

// NewContainer wraps child, managing the placements of every Image below it
// through d
func NewContainer(child vxfw.Widget, d Drawer) *Container {
	return &Container{
		Child:      child,
		drawer:     d,
		visibility: Visible,
		last:       make(map[string]shownState),
		shown:      make(map[string]*Placement),
	}
}

// Visibility returns the visibility of the placements within this container
func (c *Container) Visibility() Visibility {
	return c.visibility
}

// SetVisibility sets the visibility of every placement within this container.
// The change takes effect on the next redraw
func (c *Container) SetVisibility(v Visibility) {
	c.visibility = v
}

// Hide hides every currently displayed placement immediately, without waiting
// for a redraw. Call before suspending the application or spawning a
// subprocess which takes over the terminal; the placements reappear on the
// next redraw if the container is visible
func (c *Container) Hide() error {
	if len(c.last) == 0 {
		return nil
	}
	err := c.drawer.Batch(func() error {
		for id := range c.last {
			if err := c.drawer.Hide(id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("hide placements: %w", err)
	}
	for _, p := range c.shown {
		p.Visibility = Invisible
	}
	c.last = make(map[string]shownState)
	c.shown = make(map[string]*Placement)
	return nil
}

// CaptureEvent forwards to the wrapped widget
func (c *Container) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	if capturer, ok := c.Child.(vxfw.EventCapturer); ok {
		return capturer.CaptureEvent(ev)
	}
	return nil, nil
}

// HandleEvent forwards to the wrapped widget
func (c *Container) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	if handler, ok := c.Child.(vxfw.EventHandler); ok {
		return handler.HandleEvent(ev, phase)
	}
	return nil, nil
}

func (c *Container) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	inner, err := c.Child.Draw(ctx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	if err := c.reconcile(inner); err != nil {
		return vxfw.Surface{}, fmt.Errorf("reconcile placements: %w", err)
	}

	s := vxfw.NewSurface(inner.Size.Width, inner.Size.Height, c)
	s.AddChild(0, 0, inner)
	return s, nil
}

// reconcile diffs the placeholders visible in root against the previous pass
// and issues the resulting drawer commands as one batch
func (c *Container) reconcile(root vxfw.Surface) error {
	next := make(map[string]shownState)
	placements := make(map[string]*Placement)

	if c.visibility == Visible {
		clip := Rect{
			Width:  int(root.Size.Width),
			Height: int(root.Size.Height),
		}
		walkSurfaces(root, 0, 0, clip, func(img *Image, abs Rect, visible Rect) {
			if abs.Empty() || visible.Empty() {
				return
			}
			if c.ClipMode == ClipHides && visible != abs {
				return
			}
			// Walk order is paint order, so a duplicate identifier
			// resolves to the placeholder drawn on top
			next[img.Placement.Identifier] = shownState{
				rect:   visible,
				path:   img.Placement.Path,
				scaler: img.Placement.Scaler,
			}
			placements[img.Placement.Identifier] = img.Placement
		})
	}

	err := c.drawer.Batch(func() error {
		for id := range c.last {
			if _, ok := next[id]; ok {
				continue
			}
			log.Debug("hiding placement", "id", id)
			if err := c.drawer.Hide(id); err != nil {
				return err
			}
		}
		for id, state := range next {
			p := placements[id]
			p.X = state.rect.Col
			p.Y = state.rect.Row
			p.Width = state.rect.Width
			p.Height = state.rect.Height
			p.Visibility = Visible
			if last, ok := c.last[id]; ok && last == state {
				continue
			}
			log.Debug("showing placement", "id", id, "rect", state.rect)
			if err := c.drawer.Show(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id, p := range c.shown {
		if _, ok := next[id]; !ok {
			p.Visibility = Invisible
		}
	}
	c.last = next
	c.shown = placements
	return nil
}
