package types

import "strings"

// NoneValue is the sentinel the model generates for a slot that is not
// active in the current turn. Comparison is exact and case-sensitive.
const NoneValue = "none"

// IsNone reports whether a generated value is the "slot not present" sentinel.
func IsNone(value string) bool {
	return value == NoneValue
}

// SlotValuePair is one active slot assignment in a belief state.
// Slot names are "domain-slot" (e.g. "hotel-area").
type SlotValuePair struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
}

// String renders the serialized "slot-value" form used in the prediction
// documents, e.g. "hotel-area-east".
func (p SlotValuePair) String() string {
	return p.Slot + "-" + p.Value
}

// ParseSlotValue parses the serialized "domain-slot-value" form. Slot names
// are always two hyphen-joined tokens; everything after the second hyphen is
// the value (values may contain hyphens themselves).
func ParseSlotValue(s string) SlotValuePair {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) < 3 {
		// degenerate input: keep it comparable rather than dropping it
		return SlotValuePair{Slot: s}
	}
	return SlotValuePair{Slot: parts[0] + "-" + parts[1], Value: parts[2]}
}

// TurnBelief is the set of active slot-value pairs for one turn. Insertion
// order is preserved for serialization; comparisons are set-based.
type TurnBelief []SlotValuePair

// ParseTurnBelief parses a sequence of serialized "slot-value" strings.
// Repeated pairs collapse to one: the input comes verbatim from annotation
// sheets, and a duplicated pair would break the length-based set
// comparisons downstream.
func ParseTurnBelief(raw []string) TurnBelief {
	tb := make(TurnBelief, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		p := ParseSlotValue(s)
		if tb.Contains(p) {
			continue
		}
		tb = append(tb, p)
	}
	return tb
}

// Contains reports whether the pair is present in the belief.
func (tb TurnBelief) Contains(p SlotValuePair) bool {
	for _, q := range tb {
		if q == p {
			return true
		}
	}
	return false
}

// Equal reports set equality, independent of order.
func (tb TurnBelief) Equal(other TurnBelief) bool {
	if len(tb) != len(other) {
		return false
	}
	for _, p := range tb {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// Intersection returns the number of pairs present in both beliefs.
func (tb TurnBelief) Intersection(other TurnBelief) int {
	n := 0
	for _, p := range tb {
		if other.Contains(p) {
			n++
		}
	}
	return n
}

// Strings renders the belief back into its serialized form.
func (tb TurnBelief) Strings() []string {
	out := make([]string, 0, len(tb))
	for _, p := range tb {
		out = append(out, p.String())
	}
	return out
}
