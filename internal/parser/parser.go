// Package parser discovers match records inside arbitrary JSON payloads
// and normalizes them onto the canonical match model. The upstream schema
// is undocumented and drifts without notice, so discovery is heuristic:
// field-presence signals against data-driven alias tables, never a fixed
// schema.
package parser

import (
	"encoding/json"
	"sort"
	"strings"
)

// Candidate is a loosely-typed object discovered inside a payload that
// plausibly represents one match. It is transient: produced by Extract,
// consumed by Normalize, never persisted as-is.
type Candidate map[string]any

// Parser extracts and normalizes match candidates using alias tables.
type Parser struct {
	tables Tables
}

// New creates a Parser with the default alias tables.
func New() *Parser {
	return NewWithTables(DefaultTables())
}

// NewWithTables creates a Parser with custom alias tables.
func NewWithTables(t Tables) *Parser {
	return &Parser{tables: t}
}

// ExtractJSON decodes raw JSON and extracts candidates from it. Invalid
// JSON or a top-level value that is neither object nor array yields zero
// candidates, not an error.
func (p *Parser) ExtractJSON(data []byte) []Candidate {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return p.Extract(v)
}

// Extract recursively walks a decoded JSON value and returns every object
// that passes the match heuristic. A matched object is not searched for
// nested matches, which avoids emitting partial duplicates for shapes
// that embed participant objects inside an event object.
func (p *Parser) Extract(v any) []Candidate {
	var out []Candidate
	p.walk(v, &out)
	return out
}

func (p *Parser) walk(v any, out *[]Candidate) {
	switch val := v.(type) {
	case map[string]any:
		if p.isCandidate(val) {
			*out = append(*out, Candidate(val))
			return
		}
		// Sorted keys keep extraction order stable across runs.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p.walk(val[k], out)
		}
	case []any:
		for _, elem := range val {
			p.walk(elem, out)
		}
	}
}

// isCandidate is the match heuristic: the object must yield two
// participant names and at least one secondary signal (competition,
// start time, or status).
func (p *Parser) isCandidate(obj map[string]any) bool {
	home, away := p.participants(obj)
	if home == "" || away == "" {
		return false
	}
	return p.hasSecondarySignal(obj)
}

func (p *Parser) hasSecondarySignal(obj map[string]any) bool {
	if firstString(obj, p.tables.Competition) != "" {
		return true
	}
	if v, ok := firstValue(obj, p.tables.Start); ok && parseTime(v) != nil {
		return true
	}
	if firstString(obj, p.tables.Status) != "" {
		return true
	}
	_, ok := firstValue(obj, p.tables.Live)
	return ok
}

// participants resolves home and away names via the alias tables, falling
// back to splitting an event name on " - " when the upstream shape only
// carries a combined name.
func (p *Parser) participants(obj map[string]any) (home, away string) {
	home = participantName(obj, p.tables.Home)
	away = participantName(obj, p.tables.Away)
	if home != "" && away != "" {
		return home, away
	}

	name := firstString(obj, p.tables.Name)
	if name != "" {
		if h, a, ok := strings.Cut(name, " - "); ok {
			h, a = strings.TrimSpace(h), strings.TrimSpace(a)
			if h != "" && a != "" {
				return h, a
			}
		}
	}
	return "", ""
}

// matchesKeywords reports whether the candidate's sport, competition, or
// name text matches the configured keyword list. An empty list matches
// everything.
func (p *Parser) matchesKeywords(c Candidate) bool {
	if len(p.tables.Keywords) == 0 {
		return true
	}
	obj := map[string]any(c)
	combined := strings.ToLower(strings.Join([]string{
		firstString(obj, p.tables.Sport),
		firstString(obj, p.tables.Competition),
		firstString(obj, p.tables.Name),
	}, " "))
	for _, kw := range p.tables.Keywords {
		if strings.Contains(combined, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// participantName accepts either a plain string or a nested object
// carrying a "name" field, as both shapes appear upstream.
func participantName(obj map[string]any, aliases []string) string {
	v, ok := firstValue(obj, aliases)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if name, ok := val["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// firstValue returns the first alias key present in obj with a non-nil
// value.
func firstValue(obj map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// firstString returns the first alias key present in obj whose value is a
// non-empty string.
func firstString(obj map[string]any, aliases []string) string {
	for _, key := range aliases {
		if s, ok := obj[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
