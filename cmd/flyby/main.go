// flyby - software-rendered flight over a mountain range, in your terminal.
//
// Controls:
//
//	Up/Down     - Move along Y
//	Left/Right  - Move along X
//	W/S         - Fly forward/back along the look direction
//	A/D         - Turn left/right
//	R           - Spin the parked airplane (hold)
//	M           - Switch mode (resets the camera)
//	Space       - Reset camera and animation
//	X           - Toggle wireframe outlines
//	?           - Toggle HUD overlay
//	Esc/Q       - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/taigrr/flyby/pkg/models"
	"github.com/taigrr/flyby/pkg/scene"
)

type options struct {
	scenePath string
	mode      string
	fps       int
	width     int
	height    int
	window    bool
	headless  bool
	frames    int
	step      float64
	pngPath   string
	dump      bool
	wire      bool
	logPath   string
	verbose   bool
}

func main() {
	opts := &options{}
	root := &cobra.Command{
		Use:   "flyby",
		Short: "Fly a software-rendered camera over a mountain range",
		Long: `flyby renders flat-shaded triangle meshes on the CPU: world transform,
back-face culling, lighting, near-plane clipping, projection, a painter's
depth sort and screen-edge clipping, drawn as shaded glyphs in the terminal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := root.Flags()
	f.StringVar(&opts.scenePath, "scene", "", "YAML scene file (default: built-in airplane and mountains)")
	f.StringVar(&opts.mode, "mode", "", "mode to start in (default: the scene's start_mode)")
	f.IntVar(&opts.fps, "fps", 60, "target frames per second")
	f.IntVar(&opts.width, "width", 160, "canvas width for --window and --headless")
	f.IntVar(&opts.height, "height", 90, "canvas height for --window and --headless")
	f.BoolVar(&opts.window, "window", false, "render in a desktop window instead of the terminal")
	f.BoolVar(&opts.headless, "headless", false, "render without a display and exit")
	f.IntVar(&opts.frames, "frames", 1, "frames to render with --headless")
	f.Float64Var(&opts.step, "step", 1.0/60, "seconds between --headless frames")
	f.StringVar(&opts.pngPath, "png", "", "write the last --headless frame to this PNG file")
	f.BoolVar(&opts.dump, "dump", false, "dump the last --headless frame's triangles to stdout")
	f.BoolVar(&opts.wire, "wire", false, "outline every triangle")
	f.StringVar(&opts.logPath, "log", "", "write logs to this file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	log, closeLog, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	if opts.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", opts.fps)
	}

	cfg := scene.DefaultConfig()
	if opts.scenePath != "" {
		cfg, err = scene.LoadConfig(opts.scenePath)
		if err != nil {
			return err
		}
	}
	if opts.mode != "" {
		cfg.StartMode = opts.mode
	}

	sc, err := scene.LoadWith(cfg, models.Load, log)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	log.WithField("modes", len(cfg.Modes)).Info("scene loaded")

	switch {
	case opts.headless:
		return runHeadless(sc, opts, log, os.Stdout)
	case opts.window:
		return runWindow(sc, opts, log)
	default:
		return runTerminal(ctx, sc, opts, log)
	}
}

// newLogger writes to the --log file if given. Without one the terminal
// loop discards logs, since stderr is hidden under the alternate screen.
func newLogger(opts *options) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	switch {
	case opts.logPath != "":
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		log.SetOutput(f)
		return log, func() { f.Close() }, nil
	case opts.headless || opts.window:
		log.SetOutput(os.Stderr)
	default:
		log.SetOutput(io.Discard)
	}
	return log, func() {}, nil
}
