package nn

// HistoryCapacity is the number of mutation events remembered per weight.
const HistoryCapacity = 8

// MutationEvent records when a weight was mutated and by how much.
type MutationEvent struct {
	At        float64 // Simulation time of the mutation
	Magnitude float64 // new - old
}

// mutationHistory is a fixed-size ring buffer of MutationEvents.
// Once full, the oldest entry is overwritten.
type mutationHistory struct {
	events [HistoryCapacity]MutationEvent
	start  int
	size   int
}

func (h *mutationHistory) push(ev MutationEvent) {
	if h.size < HistoryCapacity {
		h.events[(h.start+h.size)%HistoryCapacity] = ev
		h.size++
		return
	}
	h.events[h.start] = ev
	h.start = (h.start + 1) % HistoryCapacity
}

// each visits events from oldest to newest.
func (h *mutationHistory) each(fn func(MutationEvent)) {
	for i := 0; i < h.size; i++ {
		fn(h.events[(h.start+i)%HistoryCapacity])
	}
}

func (h *mutationHistory) len() int { return h.size }

// snapshot returns the events oldest first.
func (h *mutationHistory) snapshot() []MutationEvent {
	out := make([]MutationEvent, 0, h.size)
	h.each(func(ev MutationEvent) { out = append(out, ev) })
	return out
}
