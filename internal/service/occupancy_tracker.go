package service

// occupancyKind selects one of the three independent presence sets.
type occupancyKind int

const (
	occupancyBatch occupancyKind = iota
	occupancyFaculty
	occupancyRoom
)

type occupancyKey struct {
	SlotID   string
	EntityID string
}

// occupancyTracker is the single source of truth for "is X busy in slot Y"
// during one allocation run. It maps (slot, entity) to the owning request
// id. Entries are never removed; a fresh tracker is built per run.
type occupancyTracker struct {
	sets [3]map[occupancyKey]string
}

func newOccupancyTracker() *occupancyTracker {
	t := &occupancyTracker{}
	for i := range t.sets {
		t.sets[i] = make(map[occupancyKey]string)
	}
	return t
}

func (t *occupancyTracker) MarkBusy(kind occupancyKind, slotID, entityID, requestID string) {
	t.sets[kind][occupancyKey{SlotID: slotID, EntityID: entityID}] = requestID
}

func (t *occupancyTracker) IsBusy(kind occupancyKind, slotID, entityID string) bool {
	_, busy := t.sets[kind][occupancyKey{SlotID: slotID, EntityID: entityID}]
	return busy
}
