package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dst-eval-go/internal/logger"
	"dst-eval-go/internal/pipeline"
)

// Write serializes one pass's artifacts under dir:
// {prefix}_prediction.json, {prefix}_slot_acc.json, {prefix}_result.json.
// The layouts are compatibility contracts for cross-run comparison tooling.
func Write(dir, prefix string, res pipeline.Result) error {
	log := logger.New().WithComponent("persist").WithField("dir", dir).WithField("prefix", prefix)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, prefix+"_prediction.json"), res.Predictions); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, prefix+"_slot_acc.json"), res.SlotAccuracy); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, prefix+"_result.json"), res.Metrics); err != nil {
		return err
	}
	log.Info("results persisted")
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
