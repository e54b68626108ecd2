// Command ueberlay-browse lists the images in a directory and overlays the
// selected one on the right-hand pane through an ueberzug drawer.
//
// Usage:
//
//	ueberlay-browse [-log FILE] [-sync] [DIR]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lmittmann/tint"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"git.sr.ht/~rockorager/vaxis/vxfw/text"

	"github.com/ueberlay/ueberlay"
	"github.com/ueberlay/ueberlay/uzug"
)

const listWidth = 30

type browser struct {
	files   []string
	list    list.Dynamic
	preview *ueberlay.Image
}

func newBrowser(files []string) *browser {
	b := &browser{
		files: files,
		preview: ueberlay.NewImage(&ueberlay.Placement{
			Identifier: "preview",
			Scaler:     string(uzug.ScalerContain),
		}, pane{}),
	}
	b.list = list.Dynamic{
		Builder:    b.buildRow,
		DrawCursor: true,
	}
	return b
}

func (b *browser) buildRow(i uint, cursor uint) vxfw.Widget {
	if i >= uint(len(b.files)) {
		return nil
	}
	var style vaxis.Style
	if i == cursor {
		style.Attribute = vaxis.AttrReverse
	}
	return &text.Text{
		Content: filepath.Base(b.files[i]),
		Style:   style,
	}
}

func (b *browser) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	switch ev := ev.(type) {
	case vaxis.Key:
		if ev.Matches('c', vaxis.ModCtrl) || ev.Matches('q') {
			return vxfw.QuitCmd{}, nil
		}
	}
	return nil, nil
}

func (b *browser) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	switch ev.(type) {
	case vxfw.Init:
		return vxfw.FocusWidgetCmd(&b.list), nil
	}
	return nil, nil
}

func (b *browser) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	root := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, b)

	listS, err := b.list.Draw(ctx.WithMax(vxfw.Size{
		Width:  listWidth,
		Height: ctx.Max.Height,
	}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	root.AddChild(0, 0, listS)

	if ctx.Max.Width <= listWidth+1 {
		return root, nil
	}
	b.preview.Placement.Path = b.files[int(b.list.Cursor())%len(b.files)]
	previewS, err := b.preview.Draw(ctx.WithMax(vxfw.Size{
		Width:  ctx.Max.Width - listWidth - 1,
		Height: ctx.Max.Height,
	}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	root.AddChild(listWidth+1, 0, previewS)
	return root, nil
}

// pane reserves empty cells for the picture to cover
type pane struct{}

func (p pane) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	return vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, p), nil
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, abs)
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	var (
		logPath = flag.String("log", "", "write debug logs to FILE")
		sync    = flag.Bool("sync", false, "ask the drawer to repaint synchronously at the end of each batch")
	)
	flag.Parse()
	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "couldn't open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger := slog.New(tint.NewHandler(f, &tint.Options{
			AddSource:  true,
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05.000",
		}))
		ueberlay.SetLogger(logger)
		uzug.SetLogger(logger)
	}

	files, err := imageFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't list %s: %v\n", dir, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no images in %s\n", dir)
		os.Exit(1)
	}

	client, err := uzug.New(uzug.Options{
		SynchronousDraw: *sync,
		Async:           true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't start ueberzug: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	container := ueberlay.NewContainer(newBrowser(files), client)
	defer container.Hide()

	app, err := vxfw.NewApp(vaxis.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't create app: %v\n", err)
		os.Exit(1)
	}
	if err := app.Run(container); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
