// Package tracker classifies team movement between consecutive standings
// updates so the display can flash a short up/down animation.
package tracker

import (
	"sync"
	"time"

	"github.com/Dosada05/tournament-display/models"
)

const DefaultDecay = 2500 * time.Millisecond

// Tracker сравнивает порядок команд между соседними обновлениями таблицы.
// Все пометки живут лишь ограниченное время: один общий таймер
// сбрасывается на каждом обновлении (последнее обновление побеждает) и по
// истечении безусловно очищает все пометки.
type Tracker struct {
	mu       sync.Mutex
	decay    time.Duration
	baseline map[string]int
	changes  map[string]models.PositionChange
	timer    *time.Timer
}

func New(decay time.Duration) *Tracker {
	if decay <= 0 {
		decay = DefaultDecay
	}
	return &Tracker{
		decay:    decay,
		baseline: make(map[string]int),
		changes:  make(map[string]models.PositionChange),
	}
}

// Apply records a new standings order and returns the resulting change
// tags. Teams never seen before report no change; the new order becomes
// the baseline for the next comparison.
func (t *Tracker) Apply(standings []models.Standing) map[string]models.PositionChange {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[string]int, len(standings))
	changes := make(map[string]models.PositionChange)
	for i, st := range standings {
		key := st.ID
		if key == "" {
			key = st.Name
		}
		next[key] = i
		old, seen := t.baseline[key]
		if !seen {
			continue
		}
		switch {
		case i < old:
			changes[key] = models.PositionUp
		case i > old:
			changes[key] = models.PositionDown
		}
	}

	t.baseline = next
	t.changes = changes

	// Один общий таймер: обновление посреди окна затухания перезапускает
	// его, а не ставит второе истечение в очередь.
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.decay, t.clear)

	return t.snapshotLocked()
}

func (t *Tracker) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changes = make(map[string]models.PositionChange)
}

// Changes returns a copy of the current change tags. A missing key means
// PositionNone.
func (t *Tracker) Changes() map[string]models.PositionChange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() map[string]models.PositionChange {
	out := make(map[string]models.PositionChange, len(t.changes))
	for k, v := range t.changes {
		out[k] = v
	}
	return out
}

// Stop cancels the decay timer. Call on teardown of the owning view.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
