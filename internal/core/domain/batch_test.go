package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_IsValid(t *testing.T) {
	assert.True(t, PolicySequential.IsValid())
	assert.True(t, PolicyParallel.IsValid())
	assert.False(t, Policy("").IsValid())
	assert.False(t, Policy("random").IsValid())
}

func TestProgress_Fraction(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		expected float64
	}{
		{"empty batch", Progress{}, 0},
		{"start", Progress{Completed: 0, Total: 3}, 0},
		{"one third", Progress{Completed: 1, Total: 3}, 1.0 / 3.0},
		{"complete", Progress{Completed: 3, Total: 3}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.progress.Fraction())
		})
	}
}

func TestProgress_Done(t *testing.T) {
	assert.False(t, Progress{}.Done())
	assert.False(t, Progress{Completed: 2, Total: 3}.Done())
	assert.True(t, Progress{Completed: 3, Total: 3}.Done())
}

func TestOutcome(t *testing.T) {
	ok := Success("/in/a.tif", "/out/a.heic")
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "/out/a.heic", ok.Destination)

	bad := Failed("/in/b.tif", KindInvalidSourceFile, errors.New("bad header"))
	assert.False(t, bad.Succeeded())
	assert.Empty(t, bad.Destination)
	assert.Equal(t, KindInvalidSourceFile, bad.Err.Kind)
	assert.Equal(t, "/in/b.tif", bad.Err.Source)
}

func TestBatchSummary_Record(t *testing.T) {
	s := &BatchSummary{Total: 3}
	s.Record(Success("/in/a.tif", "/out/a.heic"))
	s.Record(Failed("/in/b.tif", KindInvalidSourceFile, errors.New("bad header")))
	s.Record(Success("/in/c.tif", "/out/c.heic"))

	assert.Equal(t, 3, s.Attempted)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.FailedCount())
	assert.Equal(t, []string{"/out/a.heic", "/out/c.heic"}, s.Outputs)
	assert.Equal(t, []Failure{{Source: "/in/b.tif", Kind: KindInvalidSourceFile, Cause: "bad header"}}, s.Failures)
	assert.Equal(t, []string{"could not convert b.tif: Source file is not a valid TIFF image"}, s.Messages())
	assert.Equal(t, []string{"/in/b.tif"}, s.FailedSources())
	assert.False(t, s.AllSucceeded())
	assert.Equal(t, 1.0, s.Progress().Fraction())
}

func TestBatchSummary_AllSucceeded(t *testing.T) {
	tests := []struct {
		name     string
		summary  BatchSummary
		expected bool
	}{
		{"all converted", BatchSummary{Total: 2, Attempted: 2, Succeeded: 2}, true},
		{"one failed", BatchSummary{Total: 2, Attempted: 2, Succeeded: 1}, false},
		{"cancelled early", BatchSummary{Total: 3, Attempted: 2, Succeeded: 2, Cancelled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.summary.AllSucceeded())
		})
	}
}

func TestBatchSummary_Unconverted(t *testing.T) {
	sources := []string{"/in/a.tif", "/in/b.tif", "/in/c.tif", "/in/d.tif"}
	s := &BatchSummary{
		Total:     4,
		Attempted: 2,
		Succeeded: 1,
		Failures:  []Failure{{Source: "/in/b.tif", Kind: KindConversionFailed}},
		Cancelled: true,
	}

	assert.Equal(t, []string{"/in/b.tif", "/in/c.tif", "/in/d.tif"}, s.Unconverted(sources))
}

func TestBatchSummary_Duration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &BatchSummary{StartedAt: start, EndedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, s.Duration())
}
