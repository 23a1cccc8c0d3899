package ingest

import (
	"strconv"
	"strings"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

// normalizeColumnName folds case and separators so "Min. Order",
// "min_order" and "min order" compare equal.
func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// columns resolves header aliases to column positions.
type columns struct {
	header []string
}

// index returns the position of the first header matching any of names, or -1.
func (c columns) index(names ...string) int {
	if len(names) == 0 {
		return -1
	}
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, h := range c.header {
		if _, ok := targets[normalizeColumnName(h)]; ok {
			return i
		}
	}
	return -1
}

// row reads typed cells out of one record.
type row []string

func (r row) get(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[idx])
}

// number parses a numeric cell, tolerating thousands separators. The second
// result is false for empty or unparsable cells.
func (r row) number(idx int) (float64, bool) {
	v := r.get(idx)
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r row) numberOr(idx int, def float64) float64 {
	if f, ok := r.number(idx); ok {
		return f
	}
	return def
}

func (r row) integer(idx int) int {
	f, _ := r.number(idx)
	return int(f)
}

func (r row) flag(idx int) bool {
	switch strings.ToLower(r.get(idx)) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}

func (r row) empty() bool {
	for _, cell := range r {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
