package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/taigrr/flyby/pkg/render"
	"github.com/taigrr/flyby/pkg/scene"
)

// runHeadless renders opts.frames frames at a fixed step with no input,
// then optionally saves and dumps the last one.
func runHeadless(sc *scene.Scene, opts *options, log logrus.FieldLogger, out io.Writer) error {
	if opts.frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.frames)
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", opts.width, opts.height)
	}

	renderer := render.NewRenderer(sc.RenderConfig())
	canvas := render.NewCanvas(opts.width, opts.height)
	state := sc.NewState()
	outline := render.Glyph{Symbol: '·', Fg: render.ColorWhite, Bg: render.ColorBlack}

	var tris []render.Triangle
	for i := range opts.frames {
		if i > 0 {
			state.Update(opts.step, scene.Input{})
		}
		tris = renderer.RenderLayers(sc.Frame(state, float64(i)*opts.step, opts.width, opts.height), sc.Layers(state))
		canvas.Clear(sc.Background(state))
		canvas.Paint(tris, opts.wire, outline)

		st := renderer.Stats
		log.WithFields(logrus.Fields{
			"frame":     i,
			"mode":      sc.ModeName(state),
			"in":        st.TrianglesIn,
			"backfaces": st.BackFaces,
			"clipped":   st.NearClipped,
			"culled":    st.ObjectsCulled,
			"emitted":   st.Emitted,
		}).Debug("rendered frame")
	}

	if opts.pngPath != "" {
		if err := canvas.SavePNG(opts.pngPath); err != nil {
			return fmt.Errorf("save png: %w", err)
		}
		log.WithField("path", opts.pngPath).Info("wrote frame")
	}

	if opts.dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(out, tris)
	}

	log.WithFields(logrus.Fields{
		"frames":    opts.frames,
		"triangles": len(tris),
	}).Info("headless render done")
	return nil
}
