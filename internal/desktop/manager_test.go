package desktop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenIsIdempotent(t *testing.T) {
	m := NewManager(1440, 900)

	first := m.Open("bookings")
	moved, err := m.BringToFront("bookings")
	require.NoError(t, err)

	again := m.Open("bookings")
	assert.Equal(t, moved, again.Z, "reopening must not change state")
	assert.Equal(t, first.Geometry, again.Geometry)
	assert.Len(t, m.Windows(), 1)
}

func TestOpenCascadesPositions(t *testing.T) {
	m := NewManager(1440, 900)

	w1 := m.Open("bookings")
	w2 := m.Open("tickets")
	w3 := m.Open("reports")

	assert.Equal(t, 0, w1.X)
	assert.Equal(t, cascadeStep, w2.X)
	assert.Equal(t, cascadeStep, w2.Y)
	assert.Equal(t, 2*cascadeStep, w3.X)
	assert.Greater(t, w2.Z, w1.Z)
	assert.Greater(t, w3.Z, w2.Z)
}

func TestCloseDiscardsGeometry(t *testing.T) {
	m := NewManager(1440, 900)

	m.Open("bookings")
	require.NoError(t, m.DragStart("bookings", 100, 100))
	_, err := m.DragMove(300, 250)
	require.NoError(t, err)
	m.DragEnd()

	m.Close("bookings")
	assert.Empty(t, m.Windows())

	reopened := m.Open("bookings")
	assert.Equal(t, 0, reopened.X, "reopen starts from the cascade default")
	assert.Equal(t, 0, reopened.Y)
}

func TestMinimizeRestore(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("reports")

	require.NoError(t, m.Minimize("reports"))
	assert.True(t, m.Windows()[0].Minimized)

	require.NoError(t, m.Restore("reports"))
	assert.False(t, m.Windows()[0].Minimized)

	assert.ErrorIs(t, m.Minimize("missing"), ErrWindowNotOpen)
}

func TestToggleMaximizeRestoresExactGeometry(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")

	require.NoError(t, m.DragStart("bookings", 0, 0))
	_, err := m.DragMove(120, 80)
	require.NoError(t, err)
	m.DragEnd()
	before := m.Windows()[0].Geometry

	require.NoError(t, m.ToggleMaximize("bookings"))
	maxed := m.Windows()[0]
	assert.True(t, maxed.Maximized)
	assert.Equal(t, Geometry{X: 0, Y: 0, Width: 1440, Height: 900}, maxed.Geometry)

	require.NoError(t, m.ToggleMaximize("bookings"))
	restored := m.Windows()[0]
	assert.False(t, restored.Maximized)
	assert.Equal(t, before, restored.Geometry)
}

func TestBringToFrontStrictlyIncreases(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")
	m.Open("tickets")

	otherBefore := m.Windows()[1].Z

	z1, err := m.BringToFront("bookings")
	require.NoError(t, err)
	z2, err := m.BringToFront("bookings")
	require.NoError(t, err)

	assert.Greater(t, z2, z1)
	assert.Equal(t, otherBefore, m.Windows()[1].Z, "focusing one window must not renumber others")

	// No two windows share a z after focus events.
	seen := map[int]bool{}
	for _, w := range m.Windows() {
		assert.False(t, seen[w.Z])
		seen[w.Z] = true
	}
}

func TestDragClampsToViewport(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")

	require.NoError(t, m.DragStart("bookings", 500, 500))

	geo, err := m.DragMove(-5000, -5000)
	require.NoError(t, err)
	assert.Equal(t, 0, geo.X)
	assert.Equal(t, 0, geo.Y)

	geo, err = m.DragMove(50000, 50000)
	require.NoError(t, err)
	assert.Equal(t, 1440-visibleMargin, geo.X)
	assert.Equal(t, 900-visibleMargin, geo.Y)

	m.DragEnd()
}

func TestDragSingleCapture(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")
	m.Open("tickets")

	require.NoError(t, m.DragStart("bookings", 10, 10))
	assert.ErrorIs(t, m.DragStart("tickets", 10, 10), ErrDragInProgress)

	m.DragEnd()
	assert.NoError(t, m.DragStart("tickets", 10, 10))
	m.DragEnd()

	// End without a capture is harmless, and move without one fails.
	m.DragEnd()
	_, err := m.DragMove(1, 1)
	assert.ErrorIs(t, err, ErrNoDragInProgress)
}

func TestDragMaximizedRejected(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")
	require.NoError(t, m.ToggleMaximize("bookings"))

	assert.ErrorIs(t, m.DragStart("bookings", 10, 10), ErrWindowMaximized)
}

func TestDragMoveTracksPointerDelta(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")

	require.NoError(t, m.DragStart("bookings", 400, 300))
	geo, err := m.DragMove(450, 330)
	require.NoError(t, err)
	assert.Equal(t, 50, geo.X)
	assert.Equal(t, 30, geo.Y)

	// Moves are relative to the capture origin, not cumulative.
	geo, err = m.DragMove(410, 305)
	require.NoError(t, err)
	assert.Equal(t, 10, geo.X)
	assert.Equal(t, 5, geo.Y)
	m.DragEnd()
}

func TestCloseReleasesCapture(t *testing.T) {
	m := NewManager(1440, 900)
	m.Open("bookings")
	m.Open("tickets")

	require.NoError(t, m.DragStart("bookings", 0, 0))
	m.Close("bookings")

	assert.NoError(t, m.DragStart("tickets", 0, 0))
	m.DragEnd()
}

func TestRegistryPerSession(t *testing.T) {
	r := NewRegistry(1440, 900)

	a := r.Get("session-a")
	b := r.Get("session-b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, r.Get("session-a"))

	a.Open("bookings")
	assert.Empty(t, b.Windows())

	r.Drop("session-a")
	assert.Empty(t, r.Get("session-a").Windows(), "dropped session starts fresh")
}
