package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"dst-eval-go/internal/logger"
)

// sepToken separates the dialogue history from the slot prompt in a built
// model input, matching the tokenizer's separator token.
const sepToken = "[sep]"

// SlotDescription is one slot's entry in the slot description file.
type SlotDescription struct {
	DescriptionHuman string   `json:"description_human"`
	Naive            string   `json:"naive,omitempty"`
	Values           []string `json:"values,omitempty"`
}

// SlotSchema is the fixed slot inventory for an evaluation run, with the
// per-slot descriptions used to prompt the model.
type SlotSchema struct {
	descriptions map[string]SlotDescription
	// lang selects the description variant: "human", "naive", or "slot"
	// for the raw slot name.
	lang string
}

// LoadSchema reads the slot description file (slot name -> description
// variants) and returns the schema with the requested description variant.
func LoadSchema(path, lang string) (*SlotSchema, error) {
	log := logger.New().WithComponent("dataset.schema").WithField("path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slot descriptions: %w", err)
	}
	descriptions := map[string]SlotDescription{}
	if err := json.Unmarshal(data, &descriptions); err != nil {
		return nil, fmt.Errorf("parse slot descriptions: %w", err)
	}
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("slot description file is empty")
	}
	log.WithField("slots", len(descriptions)).WithField("slot_lang", lang).Info("slot schema loaded")
	return &SlotSchema{descriptions: descriptions, lang: lang}, nil
}

// NewSchema builds a schema directly from slot names, without descriptions.
func NewSchema(slots []string) *SlotSchema {
	descriptions := make(map[string]SlotDescription, len(slots))
	for _, s := range slots {
		descriptions[s] = SlotDescription{}
	}
	return &SlotSchema{descriptions: descriptions, lang: "slot"}
}

// Slots returns the slot inventory in stable order.
func (s *SlotSchema) Slots() []string {
	out := make([]string, 0, len(s.descriptions))
	for name := range s.descriptions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Prompt returns the slot's prompt text in the configured variant, falling
// back to the slot name when the variant is missing.
func (s *SlotSchema) Prompt(slot string) string {
	desc := s.descriptions[slot]
	switch s.lang {
	case "human":
		if desc.DescriptionHuman != "" {
			return desc.DescriptionHuman
		}
	case "naive":
		if desc.Naive != "" {
			return desc.Naive
		}
	}
	return strings.ReplaceAll(slot, "-", " ")
}

// BuildInput assembles the model input for one example: the dialogue
// history followed by the slot prompt.
func (s *SlotSchema) BuildInput(history, slot string) string {
	return strings.TrimSpace(strings.TrimSpace(history) + " " + sepToken + " " + s.Prompt(slot))
}
