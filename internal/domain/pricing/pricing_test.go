package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/erp/storefront/internal/domain/shared"
)

func TestPriceList_ActiveAt(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	pl := &PriceList{Active: true, ValidFrom: &from, ValidTo: &to}

	assert.True(t, pl.ActiveAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, pl.ActiveAt(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, pl.ActiveAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	pl.Active = false
	assert.False(t, pl.ActiveAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPromotionFilter_Query(t *testing.T) {
	active := false
	q := PromotionFilter{ListParams: shared.ListParams{Limit: 5}, Active: &active}.Query()
	assert.Equal(t, "false", q["active"])
	assert.Equal(t, "5", q["limit"])

	_, ok := PromotionFilter{}.Query()["active"]
	assert.False(t, ok)
}
