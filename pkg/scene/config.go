// Package scene holds the flyby's world description and the per-frame
// state that moves through it: which meshes are drawn, how they animate,
// and where the camera is.
package scene

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/flyby/pkg/math3d"
	"github.com/taigrr/flyby/pkg/render"
)

var (
	// ErrUnknownMode is returned when a mode name matches no configured mode.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrUnknownPalette is returned for an unrecognized palette kind.
	ErrUnknownPalette = errors.New("unknown palette")

	// ErrInvalidConfig is returned for a scene config that fails validation.
	ErrInvalidConfig = errors.New("invalid scene config")
)

// Vec is a YAML-friendly 3-vector, written as [x, y, z].
type Vec [3]float64

// V3 converts v to a math3d vector.
func (v Vec) V3() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Config describes a whole scene.
type Config struct {
	Projection Projection   `yaml:"projection"`
	Light      Light        `yaml:"light"`
	Palette    Palette      `yaml:"palette"`
	Controls   Controls     `yaml:"controls"`
	Camera     CameraConfig `yaml:"camera"`
	StartMode  string       `yaml:"start_mode"`
	Modes      []ModeConfig `yaml:"modes"`
}

// Projection holds the perspective parameters shared by every camera.
type Projection struct {
	FOV  float64 `yaml:"fov"` // Degrees
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// Light is the single directional light.
type Light struct {
	Direction Vec     `yaml:"direction"`
	Ambient   float64 `yaml:"ambient"`
}

// Palette selects the luminance mapper: "grayscale", or "tint" ramping
// from black to Color.
type Palette struct {
	Kind  string   `yaml:"kind"`
	Color [3]uint8 `yaml:"color"`
}

// Controls sets how fast input moves the camera and how quickly animation
// time advances.
type Controls struct {
	MoveSpeed float64 `yaml:"move_speed"` // Units per second
	TurnSpeed float64 `yaml:"turn_speed"` // Radians per second
	TimeScale float64 `yaml:"time_scale"` // Theta advance per second

	// Smoothing is the angular frequency of the springs that ease movement
	// rates toward their targets. Zero applies input rates directly.
	Smoothing float64 `yaml:"smoothing"`
}

// CameraConfig places a camera.
type CameraConfig struct {
	Position Vec     `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
}

// ModeConfig is one selectable view of the world, drawn as ordered layers.
type ModeConfig struct {
	Name       string        `yaml:"name"`
	Background [3]uint8      `yaml:"background"`
	Layers     []LayerConfig `yaml:"layers"`
}

// LayerConfig is a group of objects depth-sorted together. With a
// FixedCamera the layer ignores the player camera.
type LayerConfig struct {
	Name        string         `yaml:"name"`
	FixedCamera *CameraConfig  `yaml:"fixed_camera,omitempty"`
	Objects     []ObjectConfig `yaml:"objects"`
}

// ObjectConfig places and animates one mesh. The world matrix is built as
// scale, then rotation about X, Y and Z, then translation.
type ObjectConfig struct {
	Name      string `yaml:"name"`
	Mesh      string `yaml:"mesh"` // File path or builtin:<name>
	Scale     Vec    `yaml:"scale"`
	MirrorY   bool   `yaml:"mirror_y"`
	Rotate    Vec    `yaml:"rotate"`      // Fixed angles in radians
	Spin      Vec    `yaml:"spin"`        // Radians per unit of theta
	SpinOnKey bool   `yaml:"spin_on_key"` // Spin only while the spin key is held
	Translate Vec    `yaml:"translate"`
	Bob       *Bob   `yaml:"bob,omitempty"`
}

// Bob oscillates an object along Axis: Axis * Amplitude * sin(2π Frequency θ).
type Bob struct {
	Axis      Vec     `yaml:"axis"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

// DefaultConfig returns the built-in scene: an airplane spinning in front
// of the camera, and the same airplane held still over a mountain range
// the camera flies through.
func DefaultConfig() Config {
	return Config{
		Projection: Projection{FOV: 90, Near: 0.1, Far: 1000},
		Light:      Light{Direction: Vec{0, 1, -1}, Ambient: 0.1},
		Palette:    Palette{Kind: "grayscale"},
		Controls: Controls{
			MoveSpeed: 1,
			TurnSpeed: 1,
			TimeScale: 1,
			Smoothing: 12,
		},
		StartMode: "airplane",
		Modes: []ModeConfig{
			{
				Name:       "airplane",
				Background: [3]uint8{0, 0, 128},
				Layers: []LayerConfig{{
					Name: "airplane",
					Objects: []ObjectConfig{{
						Name:      "airplane",
						Mesh:      "builtin:airplane",
						Spin:      Vec{0, 0.5, 0},
						Translate: Vec{0, 0, 2},
					}},
				}},
			},
			{
				Name:       "airplane_mountains",
				Background: [3]uint8{0, 0, 128},
				Layers: []LayerConfig{
					{
						Name: "mountains",
						Objects: []ObjectConfig{{
							Name:      "mountains",
							Mesh:      "builtin:mountains",
							Translate: Vec{0, -8, 2},
						}},
					},
					{
						Name:        "airplane",
						FixedCamera: &CameraConfig{},
						Objects: []ObjectConfig{{
							Name:      "airplane",
							Mesh:      "builtin:airplane",
							Rotate:    Vec{0, 1.8, 0},
							Spin:      Vec{0, 0.5, 0},
							SpinOnKey: true,
							Translate: Vec{0, 0, 2},
						}},
					},
				},
			},
		},
	}
}

// LoadConfig reads a YAML scene file over the defaults. Listing modes in
// the file replaces the default modes entirely.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode scene %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for values the pipeline cannot use.
func (c Config) Validate() error {
	p := c.Projection
	if p.FOV <= 0 || p.FOV >= 180 {
		return fmt.Errorf("%w: fov %v outside (0, 180)", ErrInvalidConfig, p.FOV)
	}
	if p.Near <= 0 || p.Far <= p.Near {
		return fmt.Errorf("%w: need 0 < near < far, got near %v far %v", ErrInvalidConfig, p.Near, p.Far)
	}
	if c.Light.Ambient < 0 || c.Light.Ambient > 1 {
		return fmt.Errorf("%w: ambient %v outside [0, 1]", ErrInvalidConfig, c.Light.Ambient)
	}
	if _, err := c.Palette.ShadeFunc(); err != nil {
		return err
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("%w: no modes", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Modes))
	for _, m := range c.Modes {
		if m.Name == "" {
			return fmt.Errorf("%w: mode without a name", ErrInvalidConfig)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: duplicate mode %q", ErrInvalidConfig, m.Name)
		}
		seen[m.Name] = true
		for _, l := range m.Layers {
			for _, o := range l.Objects {
				if o.Mesh == "" {
					return fmt.Errorf("%w: object %q in mode %q has no mesh", ErrInvalidConfig, o.Name, m.Name)
				}
			}
		}
	}
	if _, err := c.modeIndex(c.StartMode); err != nil {
		return err
	}
	return nil
}

// modeIndex resolves a mode name; the empty name is the first mode.
func (c Config) modeIndex(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for i, m := range c.Modes {
		if m.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownMode)
}

// ShadeFunc returns the luminance mapper the palette names.
func (p Palette) ShadeFunc() (render.ShadeFunc, error) {
	switch p.Kind {
	case "", "grayscale":
		return render.GrayscaleShade, nil
	case "tint":
		return render.TintShade(render.RGB(p.Color[0], p.Color[1], p.Color[2])), nil
	default:
		return nil, fmt.Errorf("%q: %w", p.Kind, ErrUnknownPalette)
	}
}

// RenderConfig returns the pipeline settings for this scene.
func (c Config) RenderConfig() (render.Config, error) {
	shade, err := c.Palette.ShadeFunc()
	if err != nil {
		return render.Config{}, err
	}
	rc := render.DefaultConfig()
	rc.LightDir = c.Light.Direction.V3()
	rc.Ambient = c.Light.Ambient
	rc.NearZ = c.Projection.Near
	rc.Shade = shade
	return rc, nil
}

// camera builds a camera at cc with the scene's projection.
func (c Config) camera(cc CameraConfig) render.Camera {
	cam := render.NewCamera()
	cam.Position = cc.Position.V3()
	cam.Yaw = cc.Yaw
	cam.FOV = c.Projection.FOV
	cam.Near = c.Projection.Near
	cam.Far = c.Projection.Far
	return cam
}

// World returns the object's world matrix at animation time theta.
func (o ObjectConfig) World(theta float64, spinning bool) math3d.Mat4 {
	scale := o.Scale
	if scale == (Vec{}) {
		scale = Vec{1, 1, 1}
	}
	if o.MirrorY {
		scale[1] = -scale[1]
	}

	angle := o.Rotate
	switch {
	case o.SpinOnKey && spinning:
		angle = Vec{o.Spin[0] * theta, o.Spin[1] * theta, o.Spin[2] * theta}
	case !o.SpinOnKey:
		for i := range angle {
			angle[i] += o.Spin[i] * theta
		}
	}

	pos := o.Translate.V3()
	if o.Bob != nil {
		s := o.Bob.Amplitude * math.Sin(2*math.Pi*o.Bob.Frequency*theta)
		pos = pos.Add(o.Bob.Axis.V3().Scale(s))
	}

	return math3d.Scale(scale.V3()).
		Mul(math3d.RotateX(angle[0])).
		Mul(math3d.RotateY(angle[1])).
		Mul(math3d.RotateZ(angle[2])).
		Mul(math3d.Translate(pos.X, pos.Y, pos.Z))
}
