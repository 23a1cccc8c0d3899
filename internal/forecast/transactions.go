package forecast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RawTransaction is a transaction record as read from an external feed,
// before any type conversion.
type RawTransaction struct {
	SKU      string `json:"sku"`
	Quantity string `json:"quantity"`
	Date     string `json:"date"`
}

// UnmarshalJSON accepts quantity as either a JSON number or a string.
func (r *RawTransaction) UnmarshalJSON(data []byte) error {
	var aux struct {
		SKU      string          `json:"sku"`
		Quantity json.RawMessage `json:"quantity"`
		Date     string          `json:"date"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.SKU = aux.SKU
	r.Date = aux.Date
	r.Quantity = ""

	q := bytes.TrimSpace(aux.Quantity)
	switch {
	case len(q) == 0 || string(q) == "null":
	case q[0] == '"':
		var s string
		if err := json.Unmarshal(q, &s); err != nil {
			return err
		}
		r.Quantity = s
	default:
		r.Quantity = string(q)
	}

	return nil
}

// ParseDate parses a transaction date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseRaw(i int, r RawTransaction) (domain.Transaction, []string) {
	var msgs []string

	sku := strings.TrimSpace(r.SKU)
	if sku == "" {
		msgs = append(msgs, fmt.Sprintf("transaction %d missing required field: sku", i))
	}

	var qty float64
	if strings.TrimSpace(r.Quantity) == "" {
		msgs = append(msgs, fmt.Sprintf("transaction %d missing required field: quantity", i))
	} else {
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Quantity), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			msgs = append(msgs, fmt.Sprintf("transaction %d has invalid quantity: %s", i, r.Quantity))
		}
		qty = v
	}

	var date time.Time
	if strings.TrimSpace(r.Date) == "" {
		msgs = append(msgs, fmt.Sprintf("transaction %d missing required field: date", i))
	} else {
		d, err := ParseDate(r.Date)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("transaction %d has invalid date format: %s", i, r.Date))
		}
		date = d
	}

	return domain.Transaction{SKU: sku, Quantity: qty, Date: date}, msgs
}

// ParseTransactions converts raw records, excluding malformed ones. The
// returned messages describe every excluded record.
func ParseTransactions(raw []RawTransaction) ([]domain.Transaction, []string) {
	txns := make([]domain.Transaction, 0, len(raw))
	var msgs []string

	for i, r := range raw {
		t, problems := parseRaw(i, r)
		if len(problems) > 0 {
			msgs = append(msgs, problems...)
			continue
		}
		txns = append(txns, t)
	}

	return txns, msgs
}

// ValidateTransactions returns a message per problem found; empty when all records are valid.
func ValidateTransactions(raw []RawTransaction) []string {
	_, msgs := ParseTransactions(raw)
	return msgs
}
