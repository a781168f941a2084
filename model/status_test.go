package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveLegStatus(t *testing.T) {
	tests := []struct {
		name     string
		errors   int
		total    int
		live     bool
		expected LegStatus
	}{
		{"no errors live", 0, 5, true, LegCompleted},
		{"no errors dry-run", 0, 5, false, LegAuditCompleted},
		{"some errors", 2, 5, true, LegPartialError},
		{"some errors dry-run", 1, 3, false, LegPartialError},
		{"all errors", 5, 5, true, LegError},
		{"all errors dry-run", 3, 3, false, LegError},
		{"no payable destinations live", 0, 0, true, LegCompleted},
		{"no payable destinations dry-run", 0, 0, false, LegAuditCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveLegStatus(tt.errors, tt.total, tt.live))
		})
	}
}

func TestLegStatusBlocking(t *testing.T) {
	assert.True(t, LegProcessing.Blocking())
	assert.True(t, LegCompleted.Blocking())
	assert.True(t, LegAuditCompleted.Blocking())
	assert.False(t, LegPartialError.Blocking())
	assert.False(t, LegError.Blocking())
	assert.False(t, LegAbortedByPDVError.Blocking())
}

func TestDebinStatusBlocksNewPull(t *testing.T) {
	assert.False(t, DebinRejected.BlocksNewPull())
	assert.True(t, DebinPending.BlocksNewPull())
	assert.True(t, DebinCompleted.BlocksNewPull())
	assert.True(t, DebinUnknown.BlocksNewPull())
	assert.True(t, DebinUnknownForever.BlocksNewPull())
}

func TestParseDebinStatus(t *testing.T) {
	assert.Equal(t, DebinPending, ParseDebinStatus("PENDING"))
	assert.Equal(t, DebinPending, ParseDebinStatus("IN_PROGRESS"))
	assert.Equal(t, DebinCompleted, ParseDebinStatus("COMPLETED"))
	assert.Equal(t, DebinRejected, ParseDebinStatus("RECHAZADO"))
	assert.Equal(t, DebinUnknownForever, ParseDebinStatus("UNKNOWN_FOREVER"))
	assert.Equal(t, DebinUnknown, ParseDebinStatus("ACREDITANDO"))
	assert.Equal(t, DebinUnknown, ParseDebinStatus(""))
}
