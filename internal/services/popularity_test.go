package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopularityScore(t *testing.T) {
	tests := []struct {
		name     string
		recent   int
		total    int
		expected float64
	}{
		{name: "weighted blend", recent: 10, total: 100, expected: 37.0},
		{name: "no sales", recent: 0, total: 0, expected: 0},
		{name: "only recent", recent: 10, total: 10, expected: 10.0},
		{name: "only lifetime", recent: 0, total: 50, expected: 15.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PopularityScore(tt.recent, tt.total), 1e-9)
		})
	}
}

func TestPopularityScoreRecentWeighsMore(t *testing.T) {
	// Same lifetime volume: the product selling recently must rank higher.
	warm := PopularityScore(20, 100)
	cold := PopularityScore(0, 100)
	assert.Greater(t, warm, cold)
}
