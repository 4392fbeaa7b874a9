package component

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

var shakeOffsets = [...]float32{-1, -1, 0, 1, 1}

// Shaker produces a jittering offset for a limited time, typically added to
// a camera or transform position.
type Shaker struct {
	Intensity float32

	timer float64
	value mgl32.Vec2
	rng   *rand.Rand
}

func NewShaker(intensity float32, rng *rand.Rand) *Shaker {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Shaker{Intensity: intensity, rng: rng}
}

// ShakeFor starts or restarts shaking for seconds.
func (s *Shaker) ShakeFor(seconds float64) { s.timer = seconds }

func (s *Shaker) Active() bool       { return s.timer > 0 }
func (s *Shaker) Value() mgl32.Vec2  { return s.value }
func (s *Shaker) Remaining() float64 { return s.timer }

// Update advances the timer and picks a new offset while active.
func (s *Shaker) Update(dt float64) {
	if s.timer <= 0 {
		return
	}
	s.timer -= dt
	if s.timer <= 0 {
		s.timer = 0
		s.value = mgl32.Vec2{}
		return
	}
	n := len(shakeOffsets)
	s.value = mgl32.Vec2{
		shakeOffsets[s.rng.IntN(n)] * s.Intensity,
		shakeOffsets[s.rng.IntN(n)] * s.Intensity,
	}
}
