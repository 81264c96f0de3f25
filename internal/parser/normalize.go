package parser

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tippmix_scraper/internal/model"
)

// Normalization failure reasons. Both mean the candidate is dropped, not
// that the payload is broken.
var (
	ErrNoParticipants = errors.New("participant names missing")
	ErrNotEsport      = errors.New("no e-sport football keyword matched")
)

// Normalize maps a candidate's heterogeneous fields onto a canonical
// MatchRecord and derives its stable id. Candidates without both
// participant names cannot be deduplicated and are rejected with
// ErrNoParticipants; candidates outside the configured keyword gate are
// rejected with ErrNotEsport.
func (p *Parser) Normalize(c Candidate) (*model.MatchRecord, error) {
	obj := map[string]any(c)

	home, away := p.participants(obj)
	if home == "" || away == "" {
		return nil, ErrNoParticipants
	}
	if !p.matchesKeywords(c) {
		return nil, ErrNotEsport
	}

	competition := firstString(obj, p.tables.Competition)

	var start *time.Time
	if v, ok := firstValue(obj, p.tables.Start); ok {
		start = parseTime(v)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal raw fields: %w", err)
	}

	return &model.MatchRecord{
		MatchID:         MatchID(competition, home, away, start),
		Competition:     competition,
		HomeParticipant: home,
		AwayParticipant: away,
		ScheduledStart:  start,
		Status:          p.status(obj),
		RawFields:       string(raw),
		Odds:            p.parseOdds(obj),
	}, nil
}

// MatchID derives the stable identifier for a match. It is a pure
// function of the identifying fields: the same logical match produces the
// same id across captures, payload shape changes, and restarts. Upstream
// opaque ids are deliberately not used since they are neither stable nor
// consistently present.
func MatchID(competition, home, away string, start *time.Time) string {
	startKey := "-"
	if start != nil {
		startKey = start.UTC().Truncate(time.Minute).Format("2006-01-02T15:04")
	}
	key := strings.Join([]string{
		normalizeKey(competition),
		normalizeKey(home),
		normalizeKey(away),
		startKey,
	}, "|")
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// normalizeKey lower-cases and collapses whitespace; absent values use a
// fixed placeholder so ids stay comparable when optional fields drop out.
func normalizeKey(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return "-"
	}
	return strings.Join(fields, " ")
}

func (p *Parser) status(obj map[string]any) model.MatchStatus {
	if s := firstString(obj, p.tables.Status); s != "" {
		return p.mapStatus(s)
	}
	if v, ok := firstValue(obj, p.tables.Live); ok && truthy(v) {
		return model.StatusLive
	}
	return model.StatusUnknown
}

// mapStatus translates an upstream status value via the vocabulary table.
// Unrecognized values map to unknown rather than failing.
func (p *Parser) mapStatus(s string) model.MatchStatus {
	switch p.tables.Statuses[strings.ToLower(strings.TrimSpace(s))] {
	case "scheduled":
		return model.StatusScheduled
	case "live":
		return model.StatusLive
	case "finished":
		return model.StatusFinished
	}
	return model.StatusUnknown
}

// parseOdds collects priced selections from the candidate's market list.
// Selections without a usable numeric price are skipped.
func (p *Parser) parseOdds(obj map[string]any) []model.Odd {
	markets, ok := firstValue(obj, p.tables.Markets)
	if !ok {
		return nil
	}
	list, ok := markets.([]any)
	if !ok {
		return nil
	}

	var odds []model.Odd
	for _, m := range list {
		market, ok := m.(map[string]any)
		if !ok {
			continue
		}
		marketName := firstString(market, p.tables.Market)

		sels, ok := firstValue(market, p.tables.Selections)
		if !ok {
			continue
		}
		selList, ok := sels.([]any)
		if !ok {
			continue
		}
		for _, s := range selList {
			sel, ok := s.(map[string]any)
			if !ok {
				continue
			}
			price, ok := toFloat(firstRawValue(sel, p.tables.Price))
			if !ok {
				continue
			}
			odds = append(odds, model.Odd{
				Market:    marketName,
				Selection: firstString(sel, p.tables.Selection),
				Price:     price,
			})
		}
	}
	return odds
}

func firstRawValue(obj map[string]any, aliases []string) any {
	v, _ := firstValue(obj, aliases)
	return v
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val == "true" || val == "1"
	}
	return false
}
