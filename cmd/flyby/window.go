package main

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"github.com/taigrr/flyby/pkg/render"
	"github.com/taigrr/flyby/pkg/scene"
)

// windowScale is the number of window pixels per canvas cell.
const windowScale = 4

// Game draws the pipeline's triangles straight to an ebiten window, one
// solid color per triangle.
type Game struct {
	sc       *scene.Scene
	state    *scene.State
	renderer *render.Renderer
	log      logrus.FieldLogger

	width, height int
	wire          bool
	showHUD       bool
	start, last   time.Time

	whiteSub *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

func NewGame(sc *scene.Scene, opts *options, log logrus.FieldLogger) *Game {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	now := time.Now()
	return &Game{
		sc:       sc,
		state:    sc.NewState(),
		renderer: render.NewRenderer(sc.RenderConfig()),
		log:      log,
		width:    opts.width * windowScale,
		height:   opts.height * windowScale,
		wire:     opts.wire,
		showHUD:  true,
		start:    now,
		last:     now,
		whiteSub: white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.state.ToggleMode()
		g.log.WithField("mode", g.sc.ModeName(g.state)).Debug("mode switched")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.state.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.wire = !g.wire
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		g.showHUD = !g.showHUD
	}

	now := time.Now()
	dt := min(now.Sub(g.last).Seconds(), 0.1)
	g.last = now

	g.state.Update(dt, scene.Input{
		Up:        ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:      ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:      ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:     ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Forward:   ebiten.IsKeyPressed(ebiten.KeyW),
		Back:      ebiten.IsKeyPressed(ebiten.KeyS),
		TurnLeft:  ebiten.IsKeyPressed(ebiten.KeyA),
		TurnRight: ebiten.IsKeyPressed(ebiten.KeyD),
		Spin:      ebiten.IsKeyPressed(ebiten.KeyR),
	})
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.sc.Background(g.state).Blend())

	elapsed := time.Since(g.start).Seconds()
	tris := g.renderer.RenderLayers(g.sc.Frame(g.state, elapsed, g.width, g.height), g.sc.Layers(g.state))

	// Painter's order must survive batching, so triangles are drawn in
	// chunks that fit the uint16 index range, in sequence.
	const maxBatch = 65535 / 3
	for len(tris) > 0 {
		n := min(len(tris), maxBatch)
		g.drawBatch(screen, tris[:n])
		tris = tris[n:]
	}

	if g.showHUD {
		st := g.renderer.Stats
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f  %s  %d/%d tris",
			ebiten.ActualFPS(), g.sc.ModeName(g.state), st.Emitted, g.sc.TriangleCount(g.state)))
	}
}

func (g *Game) drawBatch(screen *ebiten.Image, tris []render.Triangle) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	for _, t := range tris {
		c := t.Glyph.Blend()
		cr := float32(c.R) / 255
		cg := float32(c.G) / 255
		cb := float32(c.B) / 255
		base := uint16(len(g.vertices))
		for _, p := range t.P {
			g.vertices = append(g.vertices, ebiten.Vertex{
				DstX:   float32(p.X),
				DstY:   float32(p.Y),
				SrcX:   1,
				SrcY:   1,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: 1,
			})
		}
		g.indices = append(g.indices, base, base+1, base+2)
	}
	screen.DrawTriangles(g.vertices, g.indices, g.whiteSub, &ebiten.DrawTrianglesOptions{
		FillRule: ebiten.FillAll,
	})

	if !g.wire {
		return
	}
	for _, t := range tris {
		for i := range 3 {
			a, b := t.P[i], t.P[(i+1)%3]
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, color.White, false)
		}
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func runWindow(sc *scene.Scene, opts *options, log logrus.FieldLogger) error {
	game := NewGame(sc, opts, log)
	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle("flyby")
	ebiten.SetTPS(opts.fps)
	log.WithFields(logrus.Fields{"width": game.width, "height": game.height}).Info("window started")
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
