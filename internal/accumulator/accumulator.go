package accumulator

import (
	"fmt"

	"dst-eval-go/internal/types"
)

// Accumulator folds independent per-slot generations into per-dialogue,
// per-turn belief states. It is a single-writer structure: one evaluation
// pass owns it, ingests every example, then calls Finalize exactly once.
type Accumulator struct {
	dialogues map[string]*types.DialogueRecord
	// seen guards against the same (dialogue, turn, slot) being ingested
	// twice, which the dataset schema rules out and reprocessed batches
	// would violate.
	seen      map[string]bool
	finalized bool
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{
		dialogues: map[string]*types.DialogueRecord{},
		seen:      map[string]bool{},
	}
}

// Ingest records one generated value for one example. Dialogue and turn
// records are created lazily on first sighting; the ground-truth belief is
// stored verbatim on turn creation and never overwritten. A generated value
// equal to the "none" sentinel means the slot is absent from the turn and
// adds nothing to the predicted belief.
func (a *Accumulator) Ingest(ex types.SlotExample, generated string) error {
	if a.finalized {
		return fmt.Errorf("ingest after finalize (dialogue %q turn %d)", ex.DialogueID, ex.TurnID)
	}
	key := fmt.Sprintf("%s/%d/%s", ex.DialogueID, ex.TurnID, ex.Slot)
	if a.seen[key] {
		return fmt.Errorf("duplicate example for dialogue %q turn %d slot %q", ex.DialogueID, ex.TurnID, ex.Slot)
	}
	a.seen[key] = true

	dlg, ok := a.dialogues[ex.DialogueID]
	if !ok {
		dlg = &types.DialogueRecord{
			Domain: ex.Domain,
			Turns:  map[int]*types.TurnRecord{},
		}
		a.dialogues[ex.DialogueID] = dlg
	}
	turn, ok := dlg.Turns[ex.TurnID]
	if !ok {
		turn = &types.TurnRecord{
			GroundTruth: types.ParseTurnBelief(ex.TurnBelief),
			Predicted:   types.TurnBelief{},
		}
		dlg.Turns[ex.TurnID] = turn
	}

	if types.IsNone(generated) {
		return nil
	}
	turn.Predicted = append(turn.Predicted, types.SlotValuePair{Slot: ex.Slot, Value: generated})
	return nil
}

// Merge folds a shard-local accumulator into this one. Predicted beliefs
// are unioned; ground truth must be identical wherever both shards saw the
// same turn. Neither accumulator may be finalized yet.
func (a *Accumulator) Merge(other *Accumulator) error {
	if a.finalized || other.finalized {
		return fmt.Errorf("merge on finalized accumulator")
	}
	for key := range other.seen {
		if a.seen[key] {
			return fmt.Errorf("shards overlap on example %s", key)
		}
		a.seen[key] = true
	}
	for id, od := range other.dialogues {
		dlg, ok := a.dialogues[id]
		if !ok {
			a.dialogues[id] = od
			continue
		}
		for turnID, ot := range od.Turns {
			turn, ok := dlg.Turns[turnID]
			if !ok {
				dlg.Turns[turnID] = ot
				continue
			}
			if !turn.GroundTruth.Equal(ot.GroundTruth) {
				return fmt.Errorf("ground truth differs between shards for dialogue %q turn %d", id, turnID)
			}
			for _, p := range ot.Predicted {
				if !turn.Predicted.Contains(p) {
					turn.Predicted = append(turn.Predicted, p)
				}
			}
		}
	}
	return nil
}

// Finalize closes the accumulator and hands out the accumulated state.
// Further ingestion is rejected.
func (a *Accumulator) Finalize() (map[string]*types.DialogueRecord, error) {
	if a.finalized {
		return nil, fmt.Errorf("finalize called twice")
	}
	a.finalized = true
	return a.dialogues, nil
}

// Predictions renders the accumulated state into the persisted document
// layout.
func Predictions(dialogues map[string]*types.DialogueRecord) types.Predictions {
	out := types.Predictions{}
	for id, dlg := range dialogues {
		pd := types.PredictedDialogue{
			Domain: dlg.Domain,
			Turns:  map[int]types.PredictedTurn{},
		}
		for turnID, turn := range dlg.Turns {
			pd.Turns[turnID] = types.PredictedTurn{
				TurnBelief: turn.GroundTruth.Strings(),
				PredBelief: turn.Predicted.Strings(),
			}
		}
		out[id] = pd
	}
	return out
}
