package main

import (
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/flyby/pkg/render"
	"github.com/taigrr/flyby/pkg/scene"
)

// HUD renders an overlay with frame rate, mode and pipeline counts.
type HUD struct {
	sc        *scene.Scene
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	frames    int
	stats     render.Stats
}

func NewHUD(sc *scene.Scene) *HUD {
	return &HUD{sc: sc, fpsTime: time.Now()}
}

// Update records the last frame's stats and advances the FPS counter.
// Call once per frame.
func (h *HUD) Update(stats render.Stats) {
	h.stats = stats
	h.frames++
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw writes the overlay into the top and bottom rows of area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, st *scene.State, view *viewState) {
	var (
		bg     = render.ColorBlack
		green  = render.RGB(80, 255, 120)
		white  = render.ColorWhite
		cyan   = render.RGB(80, 220, 255)
		yellow = render.RGB(255, 220, 80)
	)
	width := area.Dx()
	top, bottom := area.Min.Y, area.Max.Y-1

	fps := fmt.Sprintf(" %.0f FPS ", h.fps)
	render.DrawText(scr, area, area.Min.X, top, fps, green, bg)

	mode := fmt.Sprintf(" %s ", h.sc.ModeName(st))
	render.DrawText(scr, area, area.Min.X+max((width-len(mode))/2, 0), top, mode, white, bg)

	tris := fmt.Sprintf(" %d/%d tris ", h.stats.Emitted, h.sc.TriangleCount(st))
	render.DrawText(scr, area, area.Min.X+max(width-len(tris), 0), top, tris, cyan, bg)

	pos := st.Camera.Position
	cam := fmt.Sprintf(" pos %.1f %.1f %.1f  yaw %.2f ", pos.X, pos.Y, pos.Z, st.Camera.Yaw)
	render.DrawText(scr, area, area.Min.X, bottom, cam, white, bg)

	check := "[ ]"
	if view.wire {
		check = "[x]"
	}
	hint := fmt.Sprintf(" %s X wire  M mode ", check)
	render.DrawText(scr, area, area.Min.X+max(width-len(hint), 0), bottom, hint, yellow, bg)
}
