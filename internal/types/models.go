package types

import (
	"encoding/json"
	"fmt"
)

// SlotExample is one evaluation example: a dialogue history paired with a
// single target slot. The model generates the slot's value from ModelInput.
type SlotExample struct {
	DialogueID string   `json:"dialogue_id"`
	TurnID     int      `json:"turn_id"`
	Domain     string   `json:"domain"`
	Slot       string   `json:"slot"`
	ValueText  string   `json:"value_text"`
	TurnBelief []string `json:"turn_belief"`
	ModelInput string   `json:"model_input"`
}

// TurnRecord holds one turn's ground-truth belief and the predicted belief
// built up from per-slot generations.
type TurnRecord struct {
	GroundTruth TurnBelief
	Predicted   TurnBelief
}

// DialogueRecord owns the turns of one dialogue, keyed by turn id.
type DialogueRecord struct {
	Domain string
	Turns  map[int]*TurnRecord
}

// Metrics is the final metrics document. The key names are a compatibility
// contract with downstream reporting tooling.
type Metrics struct {
	JointAcc float64 `json:"Joint Acc"`
	TurnAcc  float64 `json:"Turn Acc"`
	JointF1  float64 `json:"Joint F1"`
}

// SlotAccuracy is one slot's counters, serialized as [total, hit, ratio].
type SlotAccuracy struct {
	Total int
	Hit   int
	Ratio float64
}

// MarshalJSON emits the [total, hit, ratio] array layout of the slot
// accuracy document.
func (s SlotAccuracy) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{s.Total, s.Hit, s.Ratio})
}

// UnmarshalJSON reads the [total, hit, ratio] array layout back.
func (s *SlotAccuracy) UnmarshalJSON(data []byte) error {
	var arr [3]json.Number
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("slot accuracy: %w", err)
	}
	total, err := arr[0].Int64()
	if err != nil {
		return fmt.Errorf("slot accuracy total: %w", err)
	}
	hit, err := arr[1].Int64()
	if err != nil {
		return fmt.Errorf("slot accuracy hit: %w", err)
	}
	ratio, err := arr[2].Float64()
	if err != nil {
		return fmt.Errorf("slot accuracy ratio: %w", err)
	}
	s.Total, s.Hit, s.Ratio = int(total), int(hit), ratio
	return nil
}

// PredictedTurn is one turn in the predictions document.
type PredictedTurn struct {
	TurnBelief []string `json:"turn_belief"`
	PredBelief []string `json:"pred_belief"`
}

// PredictedDialogue is one dialogue in the predictions document.
type PredictedDialogue struct {
	Domain string                `json:"domain"`
	Turns  map[int]PredictedTurn `json:"turns"`
}

// Predictions maps dialogue id to its predicted turns, mirroring the layout
// consumed by comparison tooling across runs.
type Predictions map[string]PredictedDialogue
