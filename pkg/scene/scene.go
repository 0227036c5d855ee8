package scene

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/taigrr/flyby/pkg/models"
	"github.com/taigrr/flyby/pkg/render"
)

// MeshLoader loads a mesh by path. models.Load is the default.
type MeshLoader func(path string) (*models.Mesh, error)

// Scene is a validated config with every mesh loaded. It is read-only
// once built and may be shared between frames.
type Scene struct {
	cfg    Config
	modes  []mode
	start  int
	render render.Config
}

type mode struct {
	name       string
	background render.Glyph
	triangles  int
	layers     []layer
}

type layer struct {
	name    string
	camera  *render.Camera
	objects []object
}

type object struct {
	cfg  ObjectConfig
	mesh *models.Mesh
}

// Load validates cfg and loads every mesh it names with models.Load. Any
// failure is returned before a frame can be rendered.
func Load(cfg Config) (*Scene, error) {
	return LoadWith(cfg, models.Load, logrus.StandardLogger())
}

// LoadWith is Load with an explicit mesh loader and logger. Each distinct
// mesh path is loaded once and shared.
func LoadWith(cfg Config, load MeshLoader, log logrus.FieldLogger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rc, err := cfg.RenderConfig()
	if err != nil {
		return nil, err
	}
	start, err := cfg.modeIndex(cfg.StartMode)
	if err != nil {
		return nil, err
	}

	s := &Scene{cfg: cfg, start: start, render: rc}
	cache := make(map[string]*models.Mesh)

	for _, mc := range cfg.Modes {
		bg := render.RGB(mc.Background[0], mc.Background[1], mc.Background[2])
		m := mode{
			name:       mc.Name,
			background: render.Glyph{Symbol: ' ', Fg: bg, Bg: bg},
		}
		for _, lc := range mc.Layers {
			l := layer{name: lc.Name}
			if lc.FixedCamera != nil {
				cam := cfg.camera(*lc.FixedCamera)
				l.camera = &cam
			}
			for _, oc := range lc.Objects {
				mesh, ok := cache[oc.Mesh]
				if !ok {
					mesh, err = load(oc.Mesh)
					if err != nil {
						return nil, fmt.Errorf("load mesh for %q in mode %q: %w", oc.Name, mc.Name, err)
					}
					cache[oc.Mesh] = mesh
					log.WithFields(logrus.Fields{
						"mesh":      oc.Mesh,
						"vertices":  mesh.VertexCount(),
						"triangles": mesh.TriangleCount(),
					}).Debug("loaded mesh")
				}
				l.objects = append(l.objects, object{cfg: oc, mesh: mesh})
				m.triangles += mesh.TriangleCount()
			}
			m.layers = append(m.layers, l)
		}
		s.modes = append(s.modes, m)
	}

	return s, nil
}

// Config returns the scene's configuration.
func (s *Scene) Config() Config {
	return s.cfg
}

// RenderConfig returns the pipeline settings for the scene.
func (s *Scene) RenderConfig() render.Config {
	return s.render
}

// NewState returns the state of the first frame: the start mode, the
// start camera and zero animation time.
func (s *Scene) NewState() *State {
	cam := s.cfg.camera(s.cfg.Camera)
	return &State{
		Camera:   cam,
		Mode:     s.start,
		start:    cam,
		controls: s.cfg.Controls,
		modes:    len(s.modes),
	}
}

// ModeIndex resolves a mode name to its index.
func (s *Scene) ModeIndex(name string) (int, error) {
	return s.cfg.modeIndex(name)
}

// ModeName returns the name of the state's current mode.
func (s *Scene) ModeName(st *State) string {
	return s.modes[s.modeOf(st)].name
}

// Background returns the glyph the current mode clears the canvas to.
func (s *Scene) Background(st *State) render.Glyph {
	return s.modes[s.modeOf(st)].background
}

// TriangleCount returns the number of source triangles in the current mode.
func (s *Scene) TriangleCount(st *State) int {
	return s.modes[s.modeOf(st)].triangles
}

func (s *Scene) modeOf(st *State) int {
	if st.Mode < 0 || st.Mode >= len(s.modes) {
		return 0
	}
	return st.Mode
}

// Frame returns the renderer input for st on a width x height canvas.
func (s *Scene) Frame(st *State, elapsed float64, width, height int) render.Frame {
	return render.Frame{
		Elapsed: elapsed,
		Camera:  st.Camera,
		Width:   width,
		Height:  height,
	}
}

// Layers builds the current mode's layers with every world matrix
// evaluated at the state's animation time.
func (s *Scene) Layers(st *State) []render.Layer {
	m := s.modes[s.modeOf(st)]
	layers := make([]render.Layer, 0, len(m.layers))
	for _, l := range m.layers {
		rl := render.Layer{
			Name:    l.name,
			Camera:  l.camera,
			Objects: make([]render.Object, 0, len(l.objects)),
		}
		for _, o := range l.objects {
			rl.Objects = append(rl.Objects, render.Object{
				Name:  o.cfg.Name,
				Mesh:  o.mesh,
				World: o.cfg.World(st.Theta, st.Spin),
			})
		}
		layers = append(layers, rl)
	}
	return layers
}
