package models

// Catalog is the immutable-for-the-run snapshot of every resource
// collection a generation run consumes. Slice order is load order and is
// part of the engine's deterministic contract.
type Catalog struct {
	Faculty  []Faculty
	Subjects []Subject
	Rooms    []Room
	Batches  []Batch
	Slots    []Slot
}

// SubjectsByID indexes the subject collection for demand expansion.
func (c *Catalog) SubjectsByID() map[string]Subject {
	index := make(map[string]Subject, len(c.Subjects))
	for _, subject := range c.Subjects {
		index[subject.ID] = subject
	}
	return index
}
