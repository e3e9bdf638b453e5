package desktop

import (
	"errors"
	"sync"
)

var (
	ErrWindowNotOpen    = errors.New("window is not open")
	ErrDragInProgress   = errors.New("another drag is in progress")
	ErrNoDragInProgress = errors.New("no drag in progress")
	ErrWindowMaximized  = errors.New("maximized windows cannot be dragged")
)

const (
	defaultWindowWidth  = 800
	defaultWindowHeight = 600
	cascadeStep         = 32
	// visibleMargin is the smallest distance a window origin may keep
	// from the viewport edge so its title area stays reachable.
	visibleMargin = 48
)

type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window is the full state of one open application window.
type Window struct {
	ID        string `json:"id"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
	Geometry
	Z int `json:"z"`

	// preMax holds the geometry to restore when leaving maximized state.
	preMax *Geometry
}

type dragState struct {
	windowID string
	// pointer position at capture and the window origin it started from
	pointerX, pointerY int
	originX, originY   int
}

// Manager owns the window registry for one desktop session: geometry,
// stacking order, minimize/maximize flags and the single drag capture
// token. All interaction is serialized through one mutex; there is no
// other coordination.
type Manager struct {
	mu             sync.Mutex
	viewportWidth  int
	viewportHeight int
	windows        map[string]*Window
	order          []string // ids in open order
	zCounter       int
	drag           *dragState
}

func NewManager(viewportWidth, viewportHeight int) *Manager {
	if viewportWidth <= 0 {
		viewportWidth = 1440
	}
	if viewportHeight <= 0 {
		viewportHeight = 900
	}
	return &Manager{
		viewportWidth:  viewportWidth,
		viewportHeight: viewportHeight,
		windows:        make(map[string]*Window),
	}
}

// Open registers a window if it is not open yet, laying it out at a
// cascading offset so windows do not fully overlap. Opening an already
// open window changes nothing.
func (m *Manager) Open(id string) Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.windows[id]; ok {
		return *w
	}

	offset := cascadeStep * len(m.order)
	m.zCounter++
	w := &Window{
		ID: id,
		Geometry: Geometry{
			X:      m.clampX(offset),
			Y:      m.clampY(offset),
			Width:  defaultWindowWidth,
			Height: defaultWindowHeight,
		},
		Z: m.zCounter,
	}
	m.windows[id] = w
	m.order = append(m.order, id)
	return *w
}

// Close discards the window's state entirely. A later reopen starts from
// the cascade default, not from where the window was.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.windows[id]; !ok {
		return
	}
	delete(m.windows, id)
	for i, openID := range m.order {
		if openID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	// A close always releases the capture it may hold.
	if m.drag != nil && m.drag.windowID == id {
		m.drag = nil
	}
}

func (m *Manager) Minimize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotOpen
	}
	w.Minimized = true
	if m.drag != nil && m.drag.windowID == id {
		m.drag = nil
	}
	return nil
}

func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotOpen
	}
	w.Minimized = false
	return nil
}

// ToggleMaximize snapshots the current geometry on the way in and restores
// it exactly on the way out.
func (m *Manager) ToggleMaximize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotOpen
	}

	if w.Maximized {
		w.Maximized = false
		if w.preMax != nil {
			w.Geometry = *w.preMax
			w.preMax = nil
		} else {
			w.Geometry = Geometry{Width: defaultWindowWidth, Height: defaultWindowHeight}
		}
		return nil
	}

	snapshot := w.Geometry
	w.preMax = &snapshot
	w.Maximized = true
	w.Geometry = Geometry{X: 0, Y: 0, Width: m.viewportWidth, Height: m.viewportHeight}
	if m.drag != nil && m.drag.windowID == id {
		m.drag = nil
	}
	return nil
}

// BringToFront assigns the window a z strictly above every other window.
// The counter only moves forward, so two focus events can never tie.
func (m *Manager) BringToFront(id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return 0, ErrWindowNotOpen
	}
	m.zCounter++
	w.Z = m.zCounter
	return w.Z, nil
}

// DragStart captures the window for pointer dragging. Only one window may
// hold the capture; starting a second drag fails until DragEnd.
func (m *Manager) DragStart(id string, pointerX, pointerY int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotOpen
	}
	if w.Maximized {
		return ErrWindowMaximized
	}
	if w.Minimized {
		return ErrWindowNotOpen
	}
	if m.drag != nil {
		return ErrDragInProgress
	}

	m.drag = &dragState{
		windowID: id,
		pointerX: pointerX,
		pointerY: pointerY,
		originX:  w.X,
		originY:  w.Y,
	}
	m.zCounter++
	w.Z = m.zCounter
	return nil
}

// DragMove repositions the captured window by the pointer delta, clamped
// so the origin stays inside the viewport with the visible margin.
func (m *Manager) DragMove(pointerX, pointerY int) (Geometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.drag == nil {
		return Geometry{}, ErrNoDragInProgress
	}
	w, ok := m.windows[m.drag.windowID]
	if !ok {
		m.drag = nil
		return Geometry{}, ErrNoDragInProgress
	}

	w.X = m.clampX(m.drag.originX + pointerX - m.drag.pointerX)
	w.Y = m.clampY(m.drag.originY + pointerY - m.drag.pointerY)
	return w.Geometry, nil
}

// DragEnd releases the capture unconditionally.
func (m *Manager) DragEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drag = nil
}

// Windows returns a snapshot of all open windows in open order.
func (m *Manager) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		snapshot = append(snapshot, *m.windows[id])
	}
	return snapshot
}

func (m *Manager) clampX(x int) int {
	return clamp(x, 0, m.viewportWidth-visibleMargin)
}

func (m *Manager) clampY(y int) int {
	return clamp(y, 0, m.viewportHeight-visibleMargin)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
