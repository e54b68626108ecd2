// Command ueberlay-native overlays an image on a vaxis application using the
// terminal's own graphics protocol instead of an ueberzug process. It drives
// the event loop itself, which is how applications that don't use the vxfw
// runtime integrate a drawer.
//
// Usage:
//
//	ueberlay-native IMAGE
package main

import (
	"fmt"
	"os"
	"sort"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/text"

	"github.com/ueberlay/ueberlay"
	"github.com/ueberlay/ueberlay/vxdraw"
)

// frame draws a caption along the bottom and reserves the rest, minus a small
// margin, for the picture
type frame struct {
	img *ueberlay.Image
}

func (f *frame) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	root := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, f)

	caption, err := text.New("q quits").Draw(ctx.WithMax(vxfw.Size{
		Width:  ctx.Max.Width,
		Height: 1,
	}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	root.AddChild(0, int(ctx.Max.Height)-1, caption)

	if ctx.Max.Width > 4 && ctx.Max.Height > 4 {
		imgS, err := f.img.Draw(ctx.WithMax(vxfw.Size{
			Width:  ctx.Max.Width - 4,
			Height: ctx.Max.Height - 3,
		}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		root.AddChild(2, 1, imgS)
	}
	return root, nil
}

// renderSurface composites a vxfw surface onto win, the way the vxfw runtime
// does when it owns the event loop
func renderSurface(win vaxis.Window, s vxfw.Surface) {
	if s.Size.Width == 0 {
		return
	}
	for i, cell := range s.Buffer {
		row := i / int(s.Size.Width)
		col := i % int(s.Size.Width)
		win.SetCell(col, row, cell)
	}
	children := make([]vxfw.SubSurface, len(s.Children))
	copy(children, s.Children)
	sort.SliceStable(children, func(i int, j int) bool {
		return children[i].ZIndex < children[j].ZIndex
	})
	for _, child := range children {
		w := min(int(child.Surface.Size.Width), int(s.Size.Width)-child.Origin.Col)
		h := min(int(child.Surface.Size.Height), int(s.Size.Height)-child.Origin.Row)
		if w <= 0 || h <= 0 {
			continue
		}
		childWin := win.New(child.Origin.Col, child.Origin.Row, w, h)
		renderSurface(childWin, child.Surface)
	}
}

func run(path string) error {
	vx, err := vaxis.New(vaxis.Options{})
	if err != nil {
		return err
	}
	defer vx.Close()

	drawer, err := vxdraw.New(vx)
	if err != nil {
		return err
	}
	defer drawer.Close()

	img := ueberlay.NewImage(&ueberlay.Placement{
		Identifier: "hero",
		Path:       path,
	}, pane{})
	container := ueberlay.NewContainer(&frame{img: img}, drawer)

	for ev := range vx.Events() {
		switch ev := ev.(type) {
		case vaxis.Key:
			if ev.Matches('q') || ev.Matches('c', vaxis.ModCtrl) {
				return nil
			}
		}

		win := vx.Window()
		win.Clear()
		ctx := vxfw.DrawContext{
			Max: vxfw.Size{
				Width:  uint16(win.Width),
				Height: uint16(win.Height),
			},
			Characters: vaxis.Characters,
		}
		s, err := container.Draw(ctx)
		if err != nil {
			return err
		}
		renderSurface(win, s)
		vx.Render()
	}
	return nil
}

// pane reserves empty cells for the picture to cover
type pane struct{}

func (p pane) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	return vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, p), nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ueberlay-native IMAGE")
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
