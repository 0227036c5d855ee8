package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/sirupsen/logrus"

	"github.com/taigrr/flyby/pkg/render"
	"github.com/taigrr/flyby/pkg/scene"
)

// holdWindow is how long a key counts as held after its last press or
// repeat. Most terminals never report releases, so held keys are inferred
// from the auto-repeat stream.
const holdWindow = 150 * time.Millisecond

type key int

const (
	keyUp key = iota
	keyDown
	keyLeft
	keyRight
	keyForward
	keyBack
	keyTurnLeft
	keyTurnRight
	keySpin
	numKeys
)

// keyNames lists the uv key strings for each held control.
var keyNames = [numKeys][]string{
	keyUp:        {"up"},
	keyDown:      {"down"},
	keyLeft:      {"left"},
	keyRight:     {"right"},
	keyForward:   {"w"},
	keyBack:      {"s"},
	keyTurnLeft:  {"a"},
	keyTurnRight: {"d"},
	keySpin:      {"r"},
}

// keyState tracks held keys. The event goroutine writes it and the frame
// loop reads it.
type keyState struct {
	mu   sync.Mutex
	last [numKeys]time.Time
}

func (k *keyState) press(ev uv.KeyPressEvent, now time.Time) {
	for i, names := range keyNames {
		if ev.MatchString(names...) {
			k.mu.Lock()
			k.last[i] = now
			k.mu.Unlock()
			return
		}
	}
}

func (k *keyState) release(ev uv.KeyReleaseEvent) {
	for i, names := range keyNames {
		if ev.MatchString(names...) {
			k.mu.Lock()
			k.last[i] = time.Time{}
			k.mu.Unlock()
		}
	}
}

func (k *keyState) input(now time.Time) scene.Input {
	k.mu.Lock()
	defer k.mu.Unlock()
	held := func(i key) bool {
		return !k.last[i].IsZero() && now.Sub(k.last[i]) <= holdWindow
	}
	return scene.Input{
		Up:        held(keyUp),
		Down:      held(keyDown),
		Left:      held(keyLeft),
		Right:     held(keyRight),
		Forward:   held(keyForward),
		Back:      held(keyBack),
		TurnLeft:  held(keyTurnLeft),
		TurnRight: held(keyTurnRight),
		Spin:      held(keySpin),
	}
}

// viewState holds UI toggles that are not part of the scene.
type viewState struct {
	showHUD bool
	wire    bool
}

// command is a one-shot action from the event goroutine, applied by the
// frame loop so scene state has a single writer.
type command int

const (
	cmdToggleMode command = iota
	cmdReset
	cmdToggleHUD
	cmdToggleWire
	cmdResize
)

func runTerminal(ctx context.Context, sc *scene.Scene, opts *options, log logrus.FieldLogger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	keys := &keyState{}
	commands := make(chan command, 16)
	var size struct {
		sync.Mutex
		w, h int
	}
	size.w, size.h = width, height

	send := func(c command) {
		select {
		case commands <- c:
		default:
		}
	}

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				size.Lock()
				size.w, size.h = ev.Width, ev.Height
				size.Unlock()
				send(cmdResize)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c", "q"):
					cancel()
					return
				case ev.MatchString("m"):
					send(cmdToggleMode)
				case ev.MatchString("space"):
					send(cmdReset)
				case ev.MatchString("x"):
					send(cmdToggleWire)
				case ev.MatchString("?", "shift+/"):
					send(cmdToggleHUD)
				default:
					keys.press(ev, time.Now())
				}

			case uv.KeyReleaseEvent:
				keys.release(ev)
			}
		}
	}()

	renderer := render.NewRenderer(sc.RenderConfig())
	canvas := render.NewCanvas(width, height)
	state := sc.NewState()
	view := &viewState{wire: opts.wire}
	hud := NewHUD(sc)
	outline := render.Glyph{Symbol: '·', Fg: render.ColorWhite, Bg: render.ColorBlack}

	log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
		"mode":   sc.ModeName(state),
	}).Info("terminal started")

	targetDuration := time.Second / time.Duration(opts.fps)
	start := time.Now()
	lastFrame := start

	for {
		select {
		case <-ctx.Done():
			log.WithField("frames", hud.frames).Info("terminal stopped")
			return nil
		default:
		}

	drain:
		for {
			select {
			case c := <-commands:
				switch c {
				case cmdToggleMode:
					state.ToggleMode()
					log.WithField("mode", sc.ModeName(state)).Debug("mode switched")
				case cmdReset:
					state.Reset()
				case cmdToggleHUD:
					view.showHUD = !view.showHUD
				case cmdToggleWire:
					view.wire = !view.wire
				case cmdResize:
					size.Lock()
					width, height = size.w, size.h
					size.Unlock()
					term.Erase()
					term.Resize(width, height)
					canvas.Resize(width, height)
					log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("resized")
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		// Long stalls would otherwise teleport the camera.
		if dt > 0.1 {
			dt = 0.1
		}

		state.Update(dt, keys.input(now))

		tris := renderer.RenderLayers(sc.Frame(state, now.Sub(start).Seconds(), width, height), sc.Layers(state))

		canvas.Clear(sc.Background(state))
		canvas.Paint(tris, view.wire, outline)

		area := uv.Rect(0, 0, width, height)
		canvas.Draw(term, area)

		hud.Update(renderer.Stats)
		if view.showHUD {
			hud.Draw(term, area, state, view)
		}

		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
