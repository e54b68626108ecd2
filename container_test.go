package ueberlay

import (
	"errors"
	"testing"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDrawer records every command it receives
type fakeDrawer struct {
	ops     []drawerOp
	batches int
	fail    error
}

type drawerOp struct {
	show bool
	id   string
	rect Rect
}

func (d *fakeDrawer) Show(p *Placement) error {
	if d.fail != nil {
		return d.fail
	}
	d.ops = append(d.ops, drawerOp{
		show: true,
		id:   p.Identifier,
		rect: Rect{Col: p.X, Row: p.Y, Width: p.Width, Height: p.Height},
	})
	return nil
}

func (d *fakeDrawer) Hide(id string) error {
	if d.fail != nil {
		return d.fail
	}
	d.ops = append(d.ops, drawerOp{id: id})
	return nil
}

func (d *fakeDrawer) Batch(fn func() error) error {
	d.batches += 1
	return fn()
}

func (d *fakeDrawer) reset() {
	d.ops = nil
}

// static draws a prebuilt surface, ignoring constraints
type static struct {
	s vxfw.Surface
}

func (w *static) Draw(vxfw.DrawContext) (vxfw.Surface, error) {
	return w.s, nil
}

func testCtx() vxfw.DrawContext {
	return vxfw.DrawContext{
		Max:        vxfw.Size{Width: 80, Height: 24},
		Characters: vaxis.Characters,
	}
}

func placeholder(id string, w uint16, h uint16) (*Image, vxfw.Surface) {
	img := NewImage(&Placement{Identifier: id, Path: "/tmp/" + id + ".png"}, nil)
	return img, vxfw.NewSurface(w, h, img)
}

func TestContainerShowsNestedPlacement(t *testing.T) {
	_, imgS := placeholder("a", 10, 5)

	// Two levels of nesting: the placeholder sits at 4,2 within a pane
	// which sits at 3,1 within the root
	pane := vxfw.NewSurface(40, 20, nil)
	pane.AddChild(4, 2, imgS)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(3, 1, pane)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)

	_, err := c.Draw(testCtx())
	require.NoError(t, err)

	require.Len(t, d.ops, 1)
	assert.Equal(t, 1, d.batches)
	assert.Equal(t, drawerOp{show: true, id: "a", rect: Rect{7, 3, 10, 5}}, d.ops[0])
}

func TestContainerUnchangedPassIsQuiet(t *testing.T) {
	_, imgS := placeholder("a", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)

	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)

	d.reset()
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	assert.Empty(t, d.ops, "an unchanged layout must not produce drawer commands")
	assert.Equal(t, 2, d.batches)
}

func TestContainerMove(t *testing.T) {
	img, imgS := placeholder("a", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	st := &static{root}
	c := NewContainer(st, d)

	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	d.reset()

	// Same placeholder, new position
	moved := vxfw.NewSurface(80, 24, nil)
	moved.AddChild(12, 6, imgS)
	st.s = moved

	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{show: true, id: "a", rect: Rect{12, 6, 10, 5}}, d.ops[0])
	assert.Equal(t, 12, img.Placement.X)
	assert.Equal(t, 6, img.Placement.Y)
}

func TestContainerPathChangeReshows(t *testing.T) {
	img, imgS := placeholder("preview", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	d.reset()

	// Same identifier, same geometry, different image: the drawer must be
	// told even though nothing moved
	img.Placement.Path = "/tmp/other.png"
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.True(t, d.ops[0].show)
}

func TestContainerHidesDeparted(t *testing.T) {
	img, imgS := placeholder("a", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	st := &static{root}
	c := NewContainer(st, d)

	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	assert.Equal(t, Visible, img.Placement.Visibility)
	d.reset()

	st.s = vxfw.NewSurface(80, 24, nil)
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{id: "a"}, d.ops[0])
	assert.Equal(t, Invisible, img.Placement.Visibility)
}

func TestContainerClipsAtViewportEdge(t *testing.T) {
	// A 20x10 viewport at 5,5; the placeholder pokes out of its right
	// edge: only 5 of its 10 columns are visible
	_, imgS := placeholder("a", 10, 5)
	viewport := vxfw.NewSurface(20, 10, nil)
	viewport.AddChild(15, 2, imgS)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(5, 5, viewport)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	assert.Empty(t, d.ops, "ClipHides must hide a partially visible placement")

	d.reset()
	c = NewContainer(&static{root}, d)
	c.ClipMode = ClipFits
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{show: true, id: "a", rect: Rect{20, 7, 5, 5}}, d.ops[0])
}

func TestContainerScrolledViewport(t *testing.T) {
	// A scrolled viewport places children at negative origins. The top
	// rows of the placeholder are trimmed away
	_, imgS := placeholder("a", 10, 5)
	viewport := vxfw.NewSurface(20, 10, nil)
	viewport.AddChild(2, -3, imgS)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(0, 0, viewport)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	c.ClipMode = ClipFits
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{show: true, id: "a", rect: Rect{2, 0, 10, 2}}, d.ops[0])
}

func TestContainerPrunesFullyScrolledOut(t *testing.T) {
	img, imgS := placeholder("a", 10, 5)
	viewport := vxfw.NewSurface(20, 10, nil)
	viewport.AddChild(2, -8, imgS)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(0, 0, viewport)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	c.ClipMode = ClipFits
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	assert.Empty(t, d.ops)
	assert.Equal(t, Invisible, img.Placement.Visibility)
}

func TestContainerDuplicateIdentifierTopWins(t *testing.T) {
	// Two placeholders share one identifier; the one composited on top
	// (higher z-index) owns the placement
	imgA := NewImage(&Placement{Identifier: "dup"}, nil)
	imgB := NewImage(&Placement{Identifier: "dup"}, nil)

	root := vxfw.NewSurface(80, 24, nil)
	below := vxfw.NewSubSurface(2, 2, vxfw.NewSurface(10, 5, imgA))
	below.ZIndex = 1
	above := vxfw.NewSubSurface(30, 10, vxfw.NewSurface(10, 5, imgB))
	above.ZIndex = 2
	// Insert in reverse z order to prove the walk sorts
	root.Children = append(root.Children, above, below)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{show: true, id: "dup", rect: Rect{30, 10, 10, 5}}, d.ops[0])
}

func TestContainerVisibilityToggle(t *testing.T) {
	_, imgS := placeholder("a", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	d.reset()

	c.SetVisibility(Invisible)
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{id: "a"}, d.ops[0])
	d.reset()

	// Nothing to do while invisible
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	assert.Empty(t, d.ops)

	c.SetVisibility(Visible)
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.True(t, d.ops[0].show)
}

func TestContainerHideImmediate(t *testing.T) {
	img, imgS := placeholder("a", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	d.reset()

	require.NoError(t, c.Hide())
	require.Len(t, d.ops, 1)
	assert.Equal(t, drawerOp{id: "a"}, d.ops[0])
	assert.Equal(t, Invisible, img.Placement.Visibility)
	d.reset()

	// Hiding nothing is a no-op, not a batch
	require.NoError(t, c.Hide())
	assert.Empty(t, d.ops)

	// The placement comes back on the next redraw
	_, err = c.Draw(testCtx())
	require.NoError(t, err)
	require.Len(t, d.ops, 1)
	assert.True(t, d.ops[0].show)
}

func TestContainerDrawerError(t *testing.T) {
	_, imgS := placeholder("a", 10, 5)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	failure := errors.New("drawer gone")
	d := &fakeDrawer{fail: failure}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.ErrorIs(t, err, failure)
}

func TestContainerZeroSizePlaceholderSkipped(t *testing.T) {
	_, imgS := placeholder("a", 0, 0)
	root := vxfw.NewSurface(80, 24, nil)
	root.AddChild(2, 2, imgS)

	d := &fakeDrawer{}
	c := NewContainer(&static{root}, d)
	_, err := c.Draw(testCtx())
	require.NoError(t, err)
	assert.Empty(t, d.ops)
}
