package domain

import (
	"math"
	"strconv"
	"strings"
)

// Priority is the urgency tier of a decision.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// DecisionStatus tracks a decision once it leaves the engine. The engine only
// ever emits StatusPending; later transitions belong to the persistence layer.
type DecisionStatus string

const (
	StatusPending  DecisionStatus = "pending"
	StatusApproved DecisionStatus = "approved"
	StatusOrdered  DecisionStatus = "ordered"
	StatusRejected DecisionStatus = "rejected"
)

var decisionTransitions = map[DecisionStatus][]DecisionStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusOrdered, StatusRejected},
}

var decisionStatusLabels = map[DecisionStatus]string{
	StatusPending:  "Pending",
	StatusApproved: "Approved",
	StatusOrdered:  "Ordered",
	StatusRejected: "Rejected",
}

// Label returns a human-readable label for a status.
func (s DecisionStatus) Label() string {
	if label, ok := decisionStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s DecisionStatus) CanTransitionTo(next DecisionStatus) bool {
	for _, allowed := range decisionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Days is a day count that may be +Inf. It encodes +Inf as JSON null.
type Days float64

// Infinite reports whether d is +Inf.
func (d Days) Infinite() bool {
	return math.IsInf(float64(d), 1)
}

// Float returns d as a plain float64.
func (d Days) Float() float64 {
	return float64(d)
}

func (d Days) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

func (d *Days) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*d = Days(math.Inf(1))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*d = Days(f)
	return nil
}
