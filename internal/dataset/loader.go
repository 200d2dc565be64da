package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"dst-eval-go/internal/logger"
	"dst-eval-go/internal/types"
)

// Load reads the evaluation sheet into slot examples. Columns are located
// by header heuristics so exports from different annotation tools keep
// working without a fixed layout.
func Load(path string, schema *SlotSchema) ([]types.SlotExample, error) {
	log := logger.New().WithComponent("dataset.loader").WithField("path", path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	dialogueIdx := -1
	turnIdx := -1
	domainIdx := -1
	slotIdx := -1
	valueIdx := -1
	beliefIdx := -1
	inputIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "dial") && (strings.Contains(l, "id") || strings.Contains(l, "name")):
			if dialogueIdx == -1 {
				dialogueIdx = i
			}
		case strings.Contains(l, "belief"):
			if beliefIdx == -1 {
				beliefIdx = i
			}
		case strings.Contains(l, "turn"):
			if turnIdx == -1 {
				turnIdx = i
			}
		case strings.Contains(l, "domain"):
			if domainIdx == -1 {
				domainIdx = i
			}
		case strings.Contains(l, "slot"):
			if slotIdx == -1 {
				slotIdx = i
			}
		case strings.Contains(l, "value"):
			if valueIdx == -1 {
				valueIdx = i
			}
		case strings.Contains(l, "input") || strings.Contains(l, "history"):
			if inputIdx == -1 {
				inputIdx = i
			}
		}
	}
	if dialogueIdx == -1 || turnIdx == -1 || slotIdx == -1 {
		return nil, fmt.Errorf("required columns not found (dialogue=%d turn=%d slot=%d)", dialogueIdx, turnIdx, slotIdx)
	}
	log.WithFields(map[string]interface{}{
		"dialogueIdx": dialogueIdx,
		"turnIdx":     turnIdx,
		"slotIdx":     slotIdx,
		"valueIdx":    valueIdx,
		"beliefIdx":   beliefIdx,
		"inputIdx":    inputIdx,
	}).Info("detected dataset column indices")

	cell := func(r []string, idx int) string {
		if idx >= 0 && idx < len(r) {
			return strings.TrimSpace(r[idx])
		}
		return ""
	}

	var out []types.SlotExample
	for i, r := range rows {
		if i == 0 {
			continue
		}
		ex := types.SlotExample{
			DialogueID: cell(r, dialogueIdx),
			Domain:     cell(r, domainIdx),
			Slot:       cell(r, slotIdx),
			ValueText:  cell(r, valueIdx),
			TurnBelief: splitBelief(cell(r, beliefIdx)),
			ModelInput: cell(r, inputIdx),
		}
		if ex.DialogueID == "" || ex.Slot == "" {
			// skip incomplete rows quietly
			continue
		}
		turnID, convErr := strconv.Atoi(cell(r, turnIdx))
		if convErr != nil {
			log.WithField("row", i).WithError(convErr).Warn("unparsable turn id, skipping row")
			continue
		}
		ex.TurnID = turnID
		// the sheet may carry a ready generation prompt; otherwise build
		// one from the history column and the slot description
		if schema != nil && !strings.Contains(ex.ModelInput, sepToken) {
			ex.ModelInput = schema.BuildInput(ex.ModelInput, ex.Slot)
		}
		out = append(out, ex)
	}
	log.WithField("examples", len(out)).Info("dataset loaded")
	return out, nil
}

// splitBelief parses a ";"-separated cell of "slot-value" strings.
func splitBelief(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Slots returns the distinct slot names present in the examples, used as
// the schema when no slot description file is configured.
func Slots(examples []types.SlotExample) []string {
	seen := map[string]bool{}
	var out []string
	for _, ex := range examples {
		if !seen[ex.Slot] {
			seen[ex.Slot] = true
			out = append(out, ex.Slot)
		}
	}
	return out
}
