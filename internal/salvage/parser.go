// Package salvage recovers a structured JSON payload from imperfect
// provider output. Providers routinely wrap a valid block in explanatory
// prose ("Here is the extracted data: {...}"); failing on the first parse
// error would reject a large share of otherwise-usable responses.
package salvage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrEmptyOutput signals that the provider returned nothing parseable at
// all: empty or non-textual output.
var ErrEmptyOutput = errors.New("provider returned an empty or non-textual response")

// ParseError wraps the strict-parse failure for output that could not be
// salvaged by any strategy. Err is the error from the first, whole-string
// attempt: it is the most informative one for the caller.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("salvage parse: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// reBalanced greedily matches an object- or array-shaped block. Greedy on
// purpose: the widest span from the first opening bracket to the last
// closing one is the block the provider intended.
var reBalanced = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse converts raw provider text into a structured payload. Strategies in
// order, first success wins:
//
//  1. strict parse of the entire string;
//  2. strict parse from the first opening brace to the end;
//  3. greedy balanced-bracket match over that substring.
//
// When everything fails the step-1 error is propagated; a failed inner
// attempt is logged, not returned.
func (p *Parser) Parse(text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyOutput
	}

	raw, firstErr := strictParse(text)
	if firstErr == nil {
		return raw, nil
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, &ParseError{Err: firstErr}
	}
	candidate := text[start:]

	if raw, err := strictParse(candidate); err == nil {
		p.logger.Debug("salvage.recovered", "strategy", "prefix_trim", "offset", start)
		return raw, nil
	}

	if match := reBalanced.FindString(candidate); match != "" {
		raw, err := strictParse(match)
		if err == nil {
			p.logger.Debug("salvage.recovered", "strategy", "balanced_match", "bytes", len(match))
			return raw, nil
		}
		p.logger.Warn("salvage.inner_attempt_failed", "error", err)
	}

	return nil, &ParseError{Err: firstErr}
}

func strictParse(s string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(s)
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		return json.RawMessage(trimmed), nil
	default:
		return nil, fmt.Errorf("payload is %T, want object or array", v)
	}
}
