package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from uint8
		to   uint8
		want bool
	}{
		{"pending to processing", JobStatusPending, JobStatusProcessing, true},
		{"pending to failed", JobStatusPending, JobStatusFailed, true},
		{"pending to completed skips processing", JobStatusPending, JobStatusCompleted, false},
		{"processing to completed", JobStatusProcessing, JobStatusCompleted, true},
		{"processing to failed", JobStatusProcessing, JobStatusFailed, true},
		{"processing back to pending", JobStatusProcessing, JobStatusPending, false},
		{"completed is frozen", JobStatusCompleted, JobStatusFailed, false},
		{"failed is frozen", JobStatusFailed, JobStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.False(t, IsTerminalStatus(JobStatusPending))
	assert.False(t, IsTerminalStatus(JobStatusProcessing))
	assert.True(t, IsTerminalStatus(JobStatusCompleted))
	assert.True(t, IsTerminalStatus(JobStatusFailed))
}

func TestJobStatusName(t *testing.T) {
	assert.Equal(t, "pending", JobStatusName(JobStatusPending))
	assert.Equal(t, "processing", JobStatusName(JobStatusProcessing))
	assert.Equal(t, "completed", JobStatusName(JobStatusCompleted))
	assert.Equal(t, "failed", JobStatusName(JobStatusFailed))
	assert.Equal(t, "unknown", JobStatusName(42))
}
