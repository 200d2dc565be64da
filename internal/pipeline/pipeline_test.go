package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dst-eval-go/internal/generator"
	"dst-eval-go/internal/types"
)

func fixtureExamples() []types.SlotExample {
	belief := []string{"hotel-area-east", "hotel-stars-4"}
	var out []types.SlotExample
	for turn := 0; turn < 2; turn++ {
		out = append(out,
			types.SlotExample{
				DialogueID: "D1", TurnID: turn, Domain: "hotel",
				Slot: "hotel-area", ValueText: "east", TurnBelief: belief,
			},
			types.SlotExample{
				DialogueID: "D1", TurnID: turn, Domain: "hotel",
				Slot: "hotel-stars", ValueText: "4", TurnBelief: belief,
			},
		)
	}
	return out
}

var fixtureSlots = []string{"hotel-area", "hotel-stars"}

// An oracle generator must produce a perfect score end to end.
func TestRun_OracleScoresPerfectly(t *testing.T) {
	res, err := Run(context.Background(), fixtureExamples(), generator.NewMock(), fixtureSlots, 3)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.Metrics.JointAcc)
	assert.Equal(t, 1.0, res.Metrics.TurnAcc)
	assert.Equal(t, 1.0, res.Metrics.JointF1)
	assert.Equal(t, 4, res.SlotAccuracy["hotel-area"].Total+res.SlotAccuracy["hotel-stars"].Total)
	assert.Equal(t, 1.0, res.SlotAccuracy["hotel-area"].Ratio)
	require.Contains(t, res.Predictions, "D1")
	assert.Len(t, res.Predictions["D1"].Turns, 2)
}

// Forcing "none" for one slot of one turn drops the pair from that turn's
// predicted belief and fails that turn, while slot accuracy sees a plain
// string mismatch.
func TestRun_ForcedNoneFailsOneTurn(t *testing.T) {
	examples := fixtureExamples()
	mock := generator.NewMock()
	mock.Overrides[generator.Key(examples[0])] = "none" // D1/0/hotel-area

	res, err := Run(context.Background(), examples, mock, fixtureSlots, 2)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Metrics.JointAcc, 1e-12)
	// turn 0: TP=1 FP=0 FN=1 -> precision 1, recall 0.5, F1 2/3
	assert.InDelta(t, (2.0/3.0+1.0)/2.0, res.Metrics.JointF1, 1e-12)
	assert.InDelta(t, 0.5, res.SlotAccuracy["hotel-area"].Ratio, 1e-12)
	assert.Equal(t, []string{"hotel-stars-4"}, res.Predictions["D1"].Turns[0].PredBelief)
}

// A schema slot the data never exercises must abort the pass before any
// metric is produced.
func TestRun_UnevaluatedSchemaSlotIsFatal(t *testing.T) {
	slots := append([]string{"hotel-parking"}, fixtureSlots...)
	_, err := Run(context.Background(), fixtureExamples(), generator.NewMock(), slots, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hotel-parking")
}

func TestRun_DuplicateExampleAborts(t *testing.T) {
	examples := fixtureExamples()
	examples = append(examples, examples[0])
	_, err := Run(context.Background(), examples, generator.NewMock(), fixtureSlots, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

type misalignedGenerator struct{}

func (misalignedGenerator) Generate(_ context.Context, examples []types.SlotExample) ([]string, error) {
	return make([]string, len(examples)+1), nil
}

func TestRun_MisalignedGeneratorRejected(t *testing.T) {
	_, err := Run(context.Background(), fixtureExamples(), misalignedGenerator{}, fixtureSlots, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "values")
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, []types.SlotExample) ([]string, error) {
	return nil, fmt.Errorf("gateway down")
}

func TestRun_GeneratorErrorAborts(t *testing.T) {
	_, err := Run(context.Background(), fixtureExamples(), failingGenerator{}, fixtureSlots, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")
}

func TestRun_NoExamplesIsError(t *testing.T) {
	_, err := Run(context.Background(), nil, generator.NewMock(), nil, 8)
	assert.Error(t, err)
}
