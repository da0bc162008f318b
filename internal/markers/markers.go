package markers

import (
	"log"
	"sync"
)

// MaxID is the highest recognized marker identifier.
const MaxID = 100

// Position is a 2-D ground coordinate derived from a marker observation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table stores the last-known ground position per marker identifier.
// Last write wins; no filtering of repeated observations.
//
// Handlers run on separate goroutines, so access is serialized here.
type Table struct {
	mu    sync.RWMutex
	known map[int]Position
}

func NewTable() *Table {
	return &Table{known: make(map[int]Position)}
}

// Record stores or overwrites the position for id. An out-of-range id is a
// caller error: logged and dropped, never fatal.
func (t *Table) Record(id int, pos Position) {
	if id < 0 || id > MaxID {
		log.Printf("MARKERS: dropped observation for out-of-range id %d", id)
		return
	}
	t.mu.Lock()
	t.known[id] = pos
	t.mu.Unlock()
}

func (t *Table) Lookup(id int) (Position, bool) {
	t.mu.RLock()
	pos, ok := t.known[id]
	t.mu.RUnlock()
	return pos, ok
}
