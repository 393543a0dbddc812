package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(&recordingQueue{}, zap.NewNop())

	require.NoError(t, s.Add("@daily", JobSendDailyReport))
	require.NoError(t, s.Add("@hourly", JobCleanupOldLogs))
	require.NoError(t, s.Add("", JobTest))
	assert.Equal(t, 2, s.Entries())

	assert.Error(t, s.Add("every tuesday-ish", JobTest))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&recordingQueue{}, zap.NewNop())
	require.NoError(t, s.Add("@every 1h", JobTest))

	s.Start()
	s.Stop()
}
