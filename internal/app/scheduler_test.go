package app

import (
	"context"
	"testing"

	"projecthub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls int
}

func (s *countingSweeper) SweepExpired(context.Context) (int64, error) {
	s.calls++
	return 0, nil
}

func TestNewScheduler_RegistersSweep(t *testing.T) {
	sweeper := &countingSweeper{}

	c, err := newScheduler("@hourly", sweeper, logger.Discard())
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	c.Entries()[0].Job.Run()
	assert.Equal(t, 1, sweeper.calls)
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := newScheduler("every now and then", &countingSweeper{}, logger.Discard())
	assert.Error(t, err)
}
