package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	err := NewValidationError("category", "unknown")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation: category: unknown", err.Error())

	multi := NewValidationErrors([]FieldError{{Field: "a"}, {Field: "b"}})
	assert.Equal(t, "validation: 2 errors", multi.Error())
}

func TestDay_UsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	ts := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", Day(ts, time.UTC))
	assert.Equal(t, "2026-03-02", Day(ts, berlin))
	assert.Equal(t, "2026-03-01", Day(ts, nil))
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 1, 17, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDay(ts, time.UTC))
}

func TestDayArithmetic(t *testing.T) {
	assert.Equal(t, "2026-03-01", AddDays("2026-02-28", 1))
	assert.Equal(t, "2025-12-31", AddDays("2026-01-01", -1))
	assert.Equal(t, "garbage", AddDays("garbage", 3))

	assert.Equal(t, 3, DaysBetween("2026-01-01", "2026-01-04"))
	assert.Equal(t, -1, DaysBetween("2026-01-02", "2026-01-01"))
	assert.Equal(t, 0, DaysBetween("bad", "2026-01-01"))
}

func TestParseDay(t *testing.T) {
	_, err := ParseDay("2026-02-30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	d, err := ParseDay("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, 28, d.Day())
}
