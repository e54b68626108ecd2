package uzug

import "github.com/ueberlay/ueberlay"

// Scaler is a drawer-side scaling algorithm. The names are defined by the
// ueberzug layer protocol
type Scaler string

const (
	ScalerContain     Scaler = "contain"
	ScalerFitContain  Scaler = "fit_contain"
	ScalerCover       Scaler = "cover"
	ScalerForcedCover Scaler = "forced_cover"
	ScalerDistort     Scaler = "distort"
	ScalerCrop        Scaler = "crop"
)

const (
	actionAdd    = "add"
	actionRemove = "remove"
)

// command is one line of the layer JSON protocol. The drawer repaints when it
// receives a command with draw set; within a batch only the final command
// carries the flag so the whole batch appears at once
type command struct {
	Action     string `json:"action"`
	Identifier string `json:"identifier"`
	X          *int   `json:"x,omitempty"`
	Y          *int   `json:"y,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	MaxWidth   int    `json:"max_width,omitempty"`
	MaxHeight  int    `json:"max_height,omitempty"`
	Scaler     Scaler `json:"scaler,omitempty"`
	Path       string `json:"path,omitempty"`
	Draw       bool   `json:"draw"`
	Sync       bool   `json:"synchronously_draw,omitempty"`
}

func addCommand(p *ueberlay.Placement) command {
	// x and y are pointers so a placement at the origin still encodes its
	// coordinates; remove commands omit them entirely
	x := p.X
	y := p.Y
	scaler := Scaler(p.Scaler)
	if scaler == "" {
		scaler = ScalerContain
	}
	// Classic ueberzug bounds the image with width/height, ueberzugpp with
	// max_width/max_height. Send both so either target scales
	return command{
		Action:     actionAdd,
		Identifier: p.Identifier,
		X:          &x,
		Y:          &y,
		Width:      p.Width,
		Height:     p.Height,
		MaxWidth:   p.Width,
		MaxHeight:  p.Height,
		Scaler:     scaler,
		Path:       p.Path,
	}
}

func removeCommand(identifier string) command {
	return command{
		Action:     actionRemove,
		Identifier: identifier,
	}
}
