package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Params(t *testing.T) {
	q := Query{From: "2024-01-01", To: "2024-01-31", Granularity: GranularityWeek}
	assert.Equal(t, map[string]string{
		"from":        "2024-01-01",
		"to":          "2024-01-31",
		"granularity": "week",
	}, q.Params())
}
