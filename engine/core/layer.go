package core

// Layer is a slice of the frame: layers update and render bottom-up and
// receive events top-down.
type Layer interface {
	OnAttach(e *Engine)
	OnDetach(e *Engine)
	OnUpdate(e *Engine, dt float64)
	OnRender(e *Engine, alpha float64)
	OnEvent(e *Engine, ev Event) bool // return true if handled; propagation stops
}

type LayerStack struct{ list []Layer }

func (ls *LayerStack) Push(l Layer) { ls.list = append(ls.list, l) }
func (ls *LayerStack) Pop() (Layer, bool) {
	if len(ls.list) == 0 {
		return nil, false
	}
	i := len(ls.list) - 1
	l := ls.list[i]
	ls.list = ls.list[:i]
	return l, true
}

func (ls *LayerStack) Len() int { return len(ls.list) }

func (ls *LayerStack) ForEach(f func(Layer)) {
	for _, l := range ls.list {
		f(l)
	}
}

// Dispatch offers ev to layers from the top; it reports whether one handled it.
func (ls *LayerStack) Dispatch(e *Engine, ev Event) bool {
	for i := len(ls.list) - 1; i >= 0; i-- {
		if ls.list[i].OnEvent(e, ev) {
			return true
		}
	}
	return false
}

// Attach pushes l and calls its OnAttach.
func (e *Engine) Attach(l Layer) {
	e.Layers.Push(l)
	l.OnAttach(e)
}

// detachAll pops every layer, top first, calling OnDetach.
func (e *Engine) detachAll() {
	for {
		l, ok := e.Layers.Pop()
		if !ok {
			return
		}
		l.OnDetach(e)
	}
}
