package core

// Input tracks key state from events. Pressed/Released report edges since
// the previous Update, which the loop calls once per fixed tick.
type Input struct {
	keys           map[Key]bool
	prev           map[Key]bool
	mouseX, mouseY float64
	scrollY        float64
}

func NewInput() *Input { return &Input{keys: map[Key]bool{}, prev: map[Key]bool{}} }

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		in.keys[e.Key] = e.Down
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	case EventScroll:
		in.scrollY += e.Yoff
	}
}

// Update snapshots the key state and clears accumulated scroll.
func (in *Input) Update() {
	clear(in.prev)
	for k, down := range in.keys {
		in.prev[k] = down
	}
	in.scrollY = 0
}

func (in *Input) IsKeyDown(k Key) bool      { return in.keys[k] }
func (in *Input) IsKeyPressed(k Key) bool   { return in.keys[k] && !in.prev[k] }
func (in *Input) IsKeyReleased(k Key) bool  { return !in.keys[k] && in.prev[k] }
func (in *Input) Mouse() (float64, float64) { return in.mouseX, in.mouseY }

// Scroll is the vertical wheel movement accumulated this tick.
func (in *Input) Scroll() float64 { return in.scrollY }
