package core

// HeadlessWindow is a Window with no surface. It closes itself after a fixed
// number of frames, which lets Run drive offscreen backends and tests.
type HeadlessWindow struct {
	W, H      int
	MaxFrames int
	Title     string

	frames  int
	closing bool
	onEv    func(Event)
	queued  []Event
}

func NewHeadlessWindow(cfg Config, maxFrames int) *HeadlessWindow {
	return &HeadlessWindow{W: cfg.Width, H: cfg.Height, MaxFrames: maxFrames, Title: cfg.Title}
}

// Post queues ev for delivery on the next PollEvents.
func (hw *HeadlessWindow) Post(ev Event) { hw.queued = append(hw.queued, ev) }

func (hw *HeadlessWindow) PollEvents() {
	evs := hw.queued
	hw.queued = nil
	for _, ev := range evs {
		if r, ok := ev.(EventResize); ok {
			hw.W, hw.H = r.W, r.H
		}
		if hw.onEv != nil {
			hw.onEv(ev)
		}
	}
}

func (hw *HeadlessWindow) SwapBuffers() { hw.frames++ }

func (hw *HeadlessWindow) ShouldClose() bool {
	return hw.closing || (hw.MaxFrames > 0 && hw.frames >= hw.MaxFrames)
}

func (hw *HeadlessWindow) RequestClose()                   { hw.closing = true }
func (hw *HeadlessWindow) FramebufferSize() (int, int)     { return hw.W, hw.H }
func (hw *HeadlessWindow) SetTitle(t string)               { hw.Title = t }
func (hw *HeadlessWindow) SetEventCallback(cb func(Event)) { hw.onEv = cb }
func (hw *HeadlessWindow) Frames() int                     { return hw.frames }
