package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables holds the field-alias and vocabulary data driving extraction and
// normalization. The upstream API is undocumented and uses several naming
// conventions for the same semantic field across endpoints, so everything
// here is data: new upstream shapes are handled by extending the tables,
// not by touching the walk or normalization logic.
type Tables struct {
	Home        []string `yaml:"home"`
	Away        []string `yaml:"away"`
	Name        []string `yaml:"name"`
	Competition []string `yaml:"competition"`
	Start       []string `yaml:"start"`
	Status      []string `yaml:"status"`
	Live        []string `yaml:"live"`
	Sport       []string `yaml:"sport"`

	Markets    []string `yaml:"markets"`
	Market     []string `yaml:"market"`
	Selections []string `yaml:"selections"`
	Selection  []string `yaml:"selection"`
	Price      []string `yaml:"price"`

	// Keywords gate candidates to e-sport football. An empty list
	// disables the gate.
	Keywords []string `yaml:"keywords"`

	// Statuses maps upstream status vocabulary (lower-cased) onto the
	// canonical values "scheduled", "live", "finished".
	Statuses map[string]string `yaml:"statuses"`
}

// DefaultTables returns the alias tables observed on the upstream API so
// far.
func DefaultTables() Tables {
	return Tables{
		Home:        []string{"homeTeam", "home", "team1", "homeParticipant", "localTeam"},
		Away:        []string{"awayTeam", "away", "team2", "awayParticipant", "visitorTeam"},
		Name:        []string{"name", "eventName", "matchName"},
		Competition: []string{"competition", "tournament", "league", "championship", "category"},
		Start:       []string{"start", "startTime", "kickoff", "date", "startDate", "scheduledStart"},
		Status:      []string{"status", "state", "matchStatus", "eventStatus", "phase"},
		Live:        []string{"live", "inplay", "inPlay", "isLive"},
		Sport:       []string{"sport", "sportName"},
		Markets:     []string{"markets", "odds"},
		Market:      []string{"name", "market"},
		Selections:  []string{"selections", "outcomes"},
		Selection:   []string{"name", "selection", "outcome"},
		Price:       []string{"odds", "price", "decimal", "value"},
		Keywords: []string{
			"e-sport", "esport", "esoccer", "efootball", "e-football",
			"e foci", "fifa", "e-foot", "virtual football",
		},
		Statuses: map[string]string{
			"ns":          "scheduled",
			"not_started": "scheduled",
			"notstarted":  "scheduled",
			"scheduled":   "scheduled",
			"prematch":    "scheduled",
			"upcoming":    "scheduled",
			"live":        "live",
			"inplay":      "live",
			"in_play":     "live",
			"running":     "live",
			"1h":          "live",
			"2h":          "live",
			"ht":          "live",
			"ft":          "finished",
			"finished":    "finished",
			"ended":       "finished",
			"closed":      "finished",
			"complete":    "finished",
		},
	}
}

// LoadTables reads alias tables from a YAML file. Fields left empty in the
// file fall back to the defaults, so an override file only needs to list
// what changed.
func LoadTables(path string) (Tables, error) {
	t := DefaultTables()

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return t, fmt.Errorf("read alias file: %w", err)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("parse alias file: %w", err)
	}

	merge(&t.Home, override.Home)
	merge(&t.Away, override.Away)
	merge(&t.Name, override.Name)
	merge(&t.Competition, override.Competition)
	merge(&t.Start, override.Start)
	merge(&t.Status, override.Status)
	merge(&t.Live, override.Live)
	merge(&t.Sport, override.Sport)
	merge(&t.Markets, override.Markets)
	merge(&t.Market, override.Market)
	merge(&t.Selections, override.Selections)
	merge(&t.Selection, override.Selection)
	merge(&t.Price, override.Price)
	if override.Keywords != nil {
		t.Keywords = override.Keywords
	}
	if override.Statuses != nil {
		t.Statuses = override.Statuses
	}
	return t, nil
}

func merge(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
