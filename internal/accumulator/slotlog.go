package accumulator

import (
	"fmt"

	"dst-eval-go/internal/types"
)

type slotCounter struct {
	total int
	hit   int
}

// SlotLogger keeps running per-slot hit/total counters. It is seeded with
// the full slot schema up front so a slot that never shows up in the data
// is caught at finalize time instead of silently missing from the report.
type SlotLogger struct {
	counters map[string]*slotCounter
}

// NewSlotLogger seeds a counter for every schema slot.
func NewSlotLogger(slots []string) *SlotLogger {
	counters := make(map[string]*slotCounter, len(slots))
	for _, s := range slots {
		counters[s] = &slotCounter{}
	}
	return &SlotLogger{counters: counters}
}

// Record counts one generation for the slot. The comparison is plain
// string equality between the generated text and the ground-truth value,
// independent of the belief-state inclusion rule ("none" matching "none"
// counts as a hit here).
func (l *SlotLogger) Record(slot, predicted, groundTruth string) {
	c, ok := l.counters[slot]
	if !ok {
		c = &slotCounter{}
		l.counters[slot] = c
	}
	c.total++
	if predicted == groundTruth {
		c.hit++
	}
}

// Finalize turns the counters into accuracy ratios. A slot with zero total
// means the schema and the data disagree; reporting it as 0.0 would
// misstate model quality, so it is a hard error.
func (l *SlotLogger) Finalize() (map[string]types.SlotAccuracy, error) {
	out := make(map[string]types.SlotAccuracy, len(l.counters))
	for slot, c := range l.counters {
		if c.total == 0 {
			return nil, fmt.Errorf("slot %q was declared but never evaluated", slot)
		}
		out[slot] = types.SlotAccuracy{
			Total: c.total,
			Hit:   c.hit,
			Ratio: float64(c.hit) / float64(c.total),
		}
	}
	return out, nil
}
