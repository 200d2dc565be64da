package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dst-eval-go/internal/pipeline"
	"dst-eval-go/internal/types"
)

func TestWrite_ArtifactsAndLayout(t *testing.T) {
	dir := t.TempDir()
	res := pipeline.Result{
		Metrics: types.Metrics{JointAcc: 0.5, TurnAcc: 0.5, JointF1: 0.75},
		SlotAccuracy: map[string]types.SlotAccuracy{
			"hotel-area": {Total: 10, Hit: 7, Ratio: 0.7},
		},
		Predictions: types.Predictions{
			"D1": {
				Domain: "hotel",
				Turns: map[int]types.PredictedTurn{
					0: {TurnBelief: []string{"hotel-area-east"}, PredBelief: []string{"hotel-area-east"}},
				},
			},
		},
	}
	require.NoError(t, Write(dir, "zeroshot", res))

	result, err := os.ReadFile(filepath.Join(dir, "zeroshot_result.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Joint Acc": 0.5, "Turn Acc": 0.5, "Joint F1": 0.75}`, string(result))

	slotAcc, err := os.ReadFile(filepath.Join(dir, "zeroshot_slot_acc.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"hotel-area": [10, 7, 0.7]}`, string(slotAcc))

	pred, err := os.ReadFile(filepath.Join(dir, "zeroshot_prediction.json"))
	require.NoError(t, err)
	var doc map[string]struct {
		Domain string `json:"domain"`
		Turns  map[string]struct {
			TurnBelief []string `json:"turn_belief"`
			PredBelief []string `json:"pred_belief"`
		} `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(pred, &doc))
	require.Contains(t, doc, "D1")
	assert.Equal(t, "hotel", doc["D1"].Domain)
	assert.Equal(t, []string{"hotel-area-east"}, doc["D1"].Turns["0"].PredBelief)
}

func TestWrite_CreatesResultsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results", "nested")
	require.NoError(t, Write(dir, "fewshot", pipeline.Result{}))
	_, err := os.Stat(filepath.Join(dir, "fewshot_result.json"))
	assert.NoError(t, err)
}
