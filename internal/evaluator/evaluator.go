package evaluator

import (
	"fmt"
	"sort"

	"dst-eval-go/internal/types"
)

// Evaluate computes joint goal accuracy, macro slot F1 and turn accuracy
// over finalized accumulator state. It is a pure function of its input:
// it must only run after the full pass has been ingested.
//
// Joint and turn accuracy share the same definition here: a turn scores 1
// only when the predicted belief equals the ground truth as a set. A turn
// with no ground-truth slots and no predicted slots is a full match and
// stays in the denominator.
func Evaluate(dialogues map[string]*types.DialogueRecord) (types.Metrics, error) {
	turns := flatten(dialogues)
	if len(turns) == 0 {
		return types.Metrics{}, fmt.Errorf("no turns to evaluate")
	}

	matched := 0
	f1Sum := 0.0
	for _, turn := range turns {
		if turn.GroundTruth.Equal(turn.Predicted) {
			matched++
		}
		f1Sum += turnF1(turn.Predicted, turn.GroundTruth)
	}

	acc := float64(matched) / float64(len(turns))
	return types.Metrics{
		JointAcc: acc,
		TurnAcc:  acc,
		JointF1:  f1Sum / float64(len(turns)),
	}, nil
}

// turnF1 is the set-based F1 between one turn's predicted and ground-truth
// beliefs. Both sets empty is a vacuously perfect turn.
func turnF1(predicted, groundTruth types.TurnBelief) float64 {
	if len(predicted) == 0 && len(groundTruth) == 0 {
		return 1.0
	}
	tp := predicted.Intersection(groundTruth)
	fp := len(predicted) - tp
	fn := len(groundTruth) - tp

	precision := 0.0
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

// flatten orders turns by dialogue id and turn id so the fold is
// deterministic regardless of map iteration order.
func flatten(dialogues map[string]*types.DialogueRecord) []*types.TurnRecord {
	ids := make([]string, 0, len(dialogues))
	for id := range dialogues {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var turns []*types.TurnRecord
	for _, id := range ids {
		dlg := dialogues[id]
		turnIDs := make([]int, 0, len(dlg.Turns))
		for t := range dlg.Turns {
			turnIDs = append(turnIDs, t)
		}
		sort.Ints(turnIDs)
		for _, t := range turnIDs {
			turns = append(turns, dlg.Turns[t])
		}
	}
	return turns
}
