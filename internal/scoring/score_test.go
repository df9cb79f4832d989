package scoring

import (
	"math"
	"testing"

	"prospect/internal/listing"
)

func TestScoreSignals(t *testing.T) {
	cases := []struct {
		name      string
		candidate listing.Candidate
		want      float64
	}{
		{"no signals", listing.Candidate{}, 0.0},
		{
			"all signals",
			listing.Candidate{
				Phone:       "+201234567",
				Website:     "https://example.com",
				Rating:      4.5,
				ReviewCount: 50,
				Images:      []string{"u1", "u2", "u3"},
			},
			1.0,
		},
		{
			"missing website only",
			listing.Candidate{
				Phone:       "+201234567",
				Rating:      4.8,
				ReviewCount: 120,
				Images:      []string{"u1"},
			},
			0.8,
		},
		{"rating below threshold", listing.Candidate{Rating: 3.9}, 0.0},
		{"rating at threshold", listing.Candidate{Rating: 4.0}, 0.2},
		{"reviews at boundary", listing.Candidate{ReviewCount: 10}, 0.0},
		{"reviews above boundary", listing.Candidate{ReviewCount: 11}, 0.2},
		{"blank phone ignored", listing.Candidate{Phone: "  "}, 0.0},
		{"blank image ignored", listing.Candidate{Images: []string{" "}}, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.candidate)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Score = %v, want %v", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Fatalf("score out of bounds: %v", got)
			}
		})
	}
}
