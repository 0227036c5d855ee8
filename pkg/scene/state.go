package scene

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/flyby/pkg/render"
)

// Input is the set of controls held during a frame.
type Input struct {
	Up, Down            bool // Move along world Y
	Left, Right         bool // Move along world X
	Forward, Back       bool // Move along the look direction
	TurnLeft, TurnRight bool
	Spin                bool // Spin objects marked spin_on_key
}

// axis returns +1, -1 or 0 for a pair of opposing controls.
func axis(pos, neg bool) float64 {
	switch {
	case pos && !neg:
		return 1
	case neg && !pos:
		return -1
	default:
		return 0
	}
}

// Rate is one movement rate eased toward its target by a spring.
type Rate struct {
	Value    float64
	velocity float64
}

// update moves the rate toward target over dt seconds. A non-positive
// frequency snaps to the target.
func (r *Rate) update(target, dt, frequency float64) {
	if frequency <= 0 || dt <= 0 {
		r.Value, r.velocity = target, 0
		return
	}
	// Critically damped: no overshoot past the requested speed
	spring := harmonica.NewSpring(dt, frequency, 1.0)
	r.Value, r.velocity = spring.Update(r.Value, r.velocity, target)
}

// State is everything that changes from frame to frame. It is owned by
// the host loop and handed to Scene.Layers once per frame.
type State struct {
	Camera render.Camera
	Theta  float64 // Animation time
	Mode   int
	Spin   bool

	// Current movement rates, in units or radians per second
	X, Y, Forward, Yaw Rate

	start    render.Camera
	controls Controls
	modes    int
}

// Update advances the state by dt seconds under the given input.
func (s *State) Update(dt float64, in Input) {
	if dt < 0 {
		dt = 0
	}
	c := s.controls

	s.X.update(axis(in.Right, in.Left)*c.MoveSpeed, dt, c.Smoothing)
	s.Y.update(axis(in.Up, in.Down)*c.MoveSpeed, dt, c.Smoothing)
	s.Forward.update(axis(in.Forward, in.Back)*c.MoveSpeed, dt, c.Smoothing)
	s.Yaw.update(axis(in.TurnRight, in.TurnLeft)*c.TurnSpeed, dt, c.Smoothing)

	s.Camera.MoveRight(s.X.Value * dt)
	s.Camera.MoveUp(s.Y.Value * dt)
	s.Camera.MoveForward(s.Forward.Value * dt)
	s.Camera.Turn(s.Yaw.Value * dt)

	s.Spin = in.Spin
	s.Theta += c.TimeScale * dt
}

// ToggleMode switches to the next mode and puts the camera back at its
// start. Animation time keeps running.
func (s *State) ToggleMode() {
	if s.modes > 0 {
		s.Mode = (s.Mode + 1) % s.modes
	}
	s.resetCamera()
}

// SetMode selects a mode by index, resetting the camera.
func (s *State) SetMode(i int) {
	if i >= 0 && i < s.modes {
		s.Mode = i
	}
	s.resetCamera()
}

// Reset restores the camera and animation time to the start, keeping the
// current mode.
func (s *State) Reset() {
	s.resetCamera()
	s.Theta = 0
	s.Spin = false
}

func (s *State) resetCamera() {
	s.Camera = s.start
	s.X, s.Y, s.Forward, s.Yaw = Rate{}, Rate{}, Rate{}, Rate{}
}
