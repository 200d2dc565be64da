package generator

import (
	"context"
	"os"
	"strconv"

	"dst-eval-go/internal/types"
)

// ValueGenerator maps model inputs to generated slot values. Outputs are
// order-aligned with the input batch: result[i] belongs to examples[i].
type ValueGenerator interface {
	Generate(ctx context.Context, examples []types.SlotExample) ([]string, error)
}

// NewFromEnv returns the gateway client, or the deterministic mock when
// USE_MOCK_LLM=true for offline demos.
func NewFromEnv() ValueGenerator {
	if os.Getenv("USE_MOCK_LLM") == "true" {
		return NewMock()
	}
	return NewClient()
}

// Mock is an oracle generator: it echoes every example's ground-truth
// value text. Useful for exercising the full pipeline offline (a correct
// run must score Joint Acc 1.0).
type Mock struct {
	// Overrides forces specific generations, keyed "dialogueID/turnID/slot".
	Overrides map[string]string
}

// NewMock returns an oracle mock with no overrides.
func NewMock() *Mock {
	return &Mock{Overrides: map[string]string{}}
}

// Generate echoes ground-truth values, honoring overrides.
func (m *Mock) Generate(_ context.Context, examples []types.SlotExample) ([]string, error) {
	out := make([]string, len(examples))
	for i, ex := range examples {
		out[i] = ex.ValueText
		if v, ok := m.Overrides[Key(ex)]; ok {
			out[i] = v
		}
	}
	return out, nil
}

// Key is the override lookup key for an example.
func Key(ex types.SlotExample) string {
	return ex.DialogueID + "/" + strconv.Itoa(ex.TurnID) + "/" + ex.Slot
}
