package load

import (
	"testing"
	"time"

	"creditdw/ETL/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDateRows(t *testing.T) {
	start := time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2012, 9, 30, 0, 0, 0, 0, time.UTC)

	rows := []models.ReconciledRow{
		{CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 3, QuarterKey: 20123, QuarterStart: start, QuarterEnd: end}},
		{CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 3, QuarterKey: 20123, QuarterStart: start, QuarterEnd: end}},
		{CalendarQuarter: models.CalendarQuarter{Year: 2012, QuarterNum: 4, QuarterKey: 20124}},
	}

	dateRows := BuildDateRows(rows)

	require.Len(t, dateRows, 2, "по одной строке на различный квартальный ключ")
	assert.Equal(t, 20123, dateRows[0].QuarterKey)
	assert.Equal(t, 2012, dateRows[0].Year)
	assert.Equal(t, 3, dateRows[0].Quarter)
	assert.True(t, start.Equal(dateRows[0].QuarterStart))
	assert.True(t, end.Equal(dateRows[0].QuarterEnd))
	assert.Equal(t, 20124, dateRows[1].QuarterKey)
}

func TestBuildDateRows_Empty(t *testing.T) {
	assert.Empty(t, BuildDateRows(nil))
}
