package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/fireclass/pkg/core"
)

// parseWhere parses a "field op value" filter such as
//
//	is_active == true
//	email_address == "a@b.com"
//	tags array_contains admin
func parseWhere(expr string) (core.Predicate, error) {
	field, rest, ok := strings.Cut(strings.TrimSpace(expr), " ")
	if !ok || field == "" {
		return core.Predicate{}, fmt.Errorf("invalid filter %q: want \"field op value\"", expr)
	}
	opText, valueText, ok := strings.Cut(strings.TrimSpace(rest), " ")
	valueText = strings.TrimSpace(valueText)
	if !ok || valueText == "" {
		return core.Predicate{}, fmt.Errorf("invalid filter %q: missing value", expr)
	}

	op, err := core.ParseOperator(opText)
	if err != nil {
		return core.Predicate{}, err
	}
	value, err := parseValue(valueText)
	if err != nil {
		return core.Predicate{}, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	if value == nil && op != core.OpEqual {
		return core.Predicate{}, fmt.Errorf("invalid filter %q: null can only be matched with %s", expr, core.OpEqual)
	}
	return core.Predicate{Field: field, Op: op, Value: value}, nil
}

// parseValue converts command-line text into a wire value. Quoted text is
// always a string.
func parseValue(s string) (any, error) {
	if strings.HasPrefix(s, `"`) {
		return strconv.Unquote(s)
	}
	switch s {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return s, nil
}
