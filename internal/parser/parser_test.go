package parser

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

func TestExtractFixture(t *testing.T) {
	payload := loadFixture(t, "../../testdata/events.json")

	p := New()
	candidates := p.ExtractJSON(payload)

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if got := candidates[0]["name"]; got != "Arsenal Cyber - Chelsea Cyber" {
		t.Errorf("first candidate name = %v", got)
	}
	if got := candidates[1]["league"]; got != "Esoccer Battle" {
		t.Errorf("second candidate league = %v", got)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{
			name:    "events array",
			payload: `{"events":[{"home":"Team A","away":"Team B","competition":"Liga X","start":"2024-05-01T18:00:00Z","status":"NS"}]}`,
			want:    1,
		},
		{
			name:    "deeply nested candidate",
			payload: `{"data":{"pages":[{"blocks":[{"home":"A","away":"B","status":"live"}]}]}}`,
			want:    1,
		},
		{
			name: "matched object is not searched for nested matches",
			payload: `{"home":"A","away":"B","competition":"X",
				"related":{"home":"C","away":"D","competition":"Y"}}`,
			want: 1,
		},
		{
			name:    "sibling candidates both found",
			payload: `[{"home":"A","away":"B","status":"live"},{"home":"C","away":"D","status":"ended"}]`,
			want:    2,
		},
		{
			name:    "combined name with secondary signal",
			payload: `{"name":"Alpha FC - Beta FC","startTime":1714586400}`,
			want:    1,
		},
		{
			name:    "two participants but no secondary signal",
			payload: `{"home":"A","away":"B"}`,
			want:    0,
		},
		{
			name:    "single participant",
			payload: `{"home":"Team A"}`,
			want:    0,
		},
		{
			name:    "pure array of numbers",
			payload: `[1,2,3]`,
			want:    0,
		},
		{
			name:    "scalar top level",
			payload: `42`,
			want:    0,
		},
		{
			name:    "string top level",
			payload: `"home"`,
			want:    0,
		},
		{
			name:    "invalid json",
			payload: `{"events":[`,
			want:    0,
		},
		{
			name:    "unparseable start is not a signal",
			payload: `{"home":"A","away":"B","start":"tomorrow-ish maybe"}`,
			want:    0,
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := len(p.ExtractJSON([]byte(tt.payload)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("candidate count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractOrderStable(t *testing.T) {
	payload := []byte(`{
		"zebra":{"home":"Z1","away":"Z2","status":"live"},
		"alpha":{"home":"A1","away":"A2","status":"live"}
	}`)

	p := New()
	first := p.ExtractJSON(payload)
	for i := 0; i < 10; i++ {
		again := p.ExtractJSON(payload)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("extraction order changed between runs (-first +again):\n%s", diff)
		}
	}
	if len(first) != 2 || first[0]["home"] != "A1" {
		t.Errorf("expected alpha candidate first, got %v", first)
	}
}
