package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvery(t *testing.T) {
	s := Every(10 * time.Minute)
	from := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(10*time.Minute), s.Next(from))
}

func TestDaily_BeforeScheduledTime(t *testing.T) {
	s := Daily(9, 30)
	from := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC), s.Next(from))
}

func TestDaily_AfterScheduledTime(t *testing.T) {
	s := Daily(9, 30)
	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC), s.Next(from))
}

func TestCron_EveryQuarterHour(t *testing.T) {
	s := Cron("*/15 * * * *")
	from := time.Date(2026, 8, 31, 12, 3, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 15, 0, 0, time.UTC), s.Next(from))
}

func TestCron_InvalidExpressionPanics(t *testing.T) {
	assert.Panics(t, func() { Cron("not a cron expr") })
}

func TestParseCron(t *testing.T) {
	s, err := ParseCron("0 3 * * *")
	assert.NoError(t, err)
	from := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC), s.Next(from))
}

func TestParseCron_InvalidExpression(t *testing.T) {
	s, err := ParseCron("61 * * * *")
	assert.Error(t, err)
	assert.Nil(t, s)
}
