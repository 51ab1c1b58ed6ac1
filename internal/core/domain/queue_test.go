package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetainPolicy_IsValid(t *testing.T) {
	assert.True(t, RetainAll.IsValid())
	assert.True(t, RetainFailed.IsValid())
	assert.False(t, RetainPolicy("none").IsValid())
}

func TestSourceQueue_AddDeduplicates(t *testing.T) {
	q := NewSourceQueue("/in/a.tif", "/in/b.tif", "/in/a.tif")

	assert.Equal(t, 2, q.Len())
	assert.False(t, q.Add("/in/b.tif"))
	assert.True(t, q.Add("/in/c.tif"))
	assert.Equal(t, []string{"/in/a.tif", "/in/b.tif", "/in/c.tif"}, q.Items())
}

func TestSourceQueue_ZeroValue(t *testing.T) {
	var q SourceQueue
	assert.True(t, q.Add("/in/a.tif"))
	assert.True(t, q.Contains("/in/a.tif"))
}

func TestSourceQueue_Remove(t *testing.T) {
	q := NewSourceQueue("/in/a.tif", "/in/b.tif", "/in/c.tif")

	assert.True(t, q.Remove("/in/b.tif"))
	assert.False(t, q.Remove("/in/b.tif"))
	assert.False(t, q.Contains("/in/b.tif"))
	assert.Equal(t, []string{"/in/a.tif", "/in/c.tif"}, q.Items())
}

func TestSourceQueue_ItemsIsCopy(t *testing.T) {
	q := NewSourceQueue("/in/a.tif")
	items := q.Items()
	items[0] = "/tampered"
	assert.Equal(t, []string{"/in/a.tif"}, q.Items())
}

func TestSourceQueue_Settle(t *testing.T) {
	sources := []string{"/in/a.tif", "/in/b.tif", "/in/c.tif"}
	allOK := &BatchSummary{Total: 3, Attempted: 3, Succeeded: 3}
	oneFailed := &BatchSummary{
		Total:     3,
		Attempted: 3,
		Succeeded: 2,
		Failures:  []Failure{{Source: "/in/b.tif", Kind: KindInvalidSourceFile}},
	}

	tests := []struct {
		name     string
		summary  *BatchSummary
		policy   RetainPolicy
		expected []string
	}{
		{"all succeeded clears", allOK, RetainAll, []string{}},
		{"all succeeded clears with failed policy", allOK, RetainFailed, []string{}},
		{"failure keeps whole queue", oneFailed, RetainAll, sources},
		{"failure keeps only failed", oneFailed, RetainFailed, []string{"/in/b.tif"}},
		{"nil summary leaves queue", nil, RetainAll, sources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewSourceQueue(sources...)
			q.Settle(tt.summary, tt.policy)
			assert.Equal(t, tt.expected, q.Items())
		})
	}
}
