package parser

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// parseTime handles the timestamp shapes seen upstream: epoch numbers
// (seconds or milliseconds) and a variety of string formats. Anything
// unparseable is treated as absent.
func parseTime(v any) *time.Time {
	switch val := v.(type) {
	case float64:
		return fromEpoch(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return nil
		}
		u := t.UTC()
		return &u
	}
	return nil
}

func fromEpoch(v float64) *time.Time {
	if v <= 0 {
		return nil
	}
	// Values past 1e10 cannot be plausible second timestamps, assume ms.
	if v > 1e10 {
		v /= 1000
	}
	t := time.Unix(int64(v), 0).UTC()
	return &t
}
