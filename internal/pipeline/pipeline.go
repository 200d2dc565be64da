package pipeline

import (
	"context"
	"fmt"
	"time"

	"dst-eval-go/internal/accumulator"
	"dst-eval-go/internal/evaluator"
	"dst-eval-go/internal/generator"
	"dst-eval-go/internal/logger"
	"dst-eval-go/internal/types"
)

// Result is one completed evaluation pass.
type Result struct {
	Metrics      types.Metrics                 `json:"metrics"`
	SlotAccuracy map[string]types.SlotAccuracy `json:"slot_accuracy"`
	Predictions  types.Predictions             `json:"predictions"`
	DurationMs   int64                         `json:"duration_ms"`
}

// Run performs a full evaluation pass: generate values batch by batch,
// fold them into the belief-state accumulator and the slot counters, then
// finalize and score. The fold is strictly sequential and example-aligned:
// generation i of a batch always belongs to example i. A finalize failure
// aborts before any metric is computed, so no partial result escapes.
func Run(ctx context.Context, examples []types.SlotExample, gen generator.ValueGenerator, slots []string, batchSize int) (Result, error) {
	log := logger.New().WithComponent("pipeline")
	start := time.Now()

	if batchSize <= 0 {
		batchSize = 16
	}
	acc := accumulator.New()
	slotLog := accumulator.NewSlotLogger(slots)

	for lo := 0; lo < len(examples); lo += batchSize {
		hi := lo + batchSize
		if hi > len(examples) {
			hi = len(examples)
		}
		batch := examples[lo:hi]

		values, err := gen.Generate(ctx, batch)
		if err != nil {
			return Result{}, fmt.Errorf("generate batch at %d: %w", lo, err)
		}
		if len(values) != len(batch) {
			return Result{}, fmt.Errorf("generator returned %d values for %d examples", len(values), len(batch))
		}
		for i, ex := range batch {
			if err := acc.Ingest(ex, values[i]); err != nil {
				return Result{}, fmt.Errorf("ingest: %w", err)
			}
			slotLog.Record(ex.Slot, values[i], ex.ValueText)
		}
		log.WithField("processed", hi).WithField("total", len(examples)).Debug("batch folded")
	}

	dialogues, err := acc.Finalize()
	if err != nil {
		return Result{}, fmt.Errorf("finalize accumulator: %w", err)
	}
	slotAcc, err := slotLog.Finalize()
	if err != nil {
		return Result{}, fmt.Errorf("finalize slot counters: %w", err)
	}
	metrics, err := evaluator.Evaluate(dialogues)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate: %w", err)
	}

	res := Result{
		Metrics:      metrics,
		SlotAccuracy: slotAcc,
		Predictions:  accumulator.Predictions(dialogues),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	log.WithFields(map[string]interface{}{
		"examples":    len(examples),
		"dialogues":   len(dialogues),
		"joint_acc":   metrics.JointAcc,
		"joint_f1":    metrics.JointF1,
		"duration_ms": res.DurationMs,
	}).Info("evaluation pass complete")
	return res, nil
}
