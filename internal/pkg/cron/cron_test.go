package cron_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsStatus(t *testing.T) {
	s := cron.New(nil)
	s.Register(cron.Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	s.Register(cron.Job{Name: "bad", Interval: time.Hour, Fn: func(context.Context) error { return errors.New("boom") }})

	require.NoError(t, s.Run(context.Background(), "ok"))
	assert.EqualError(t, s.Run(context.Background(), "bad"), `job "bad": boom`)
	assert.ErrorIs(t, s.Run(context.Background(), "missing"), cron.ErrUnknownJob)

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "bad", items[0].Name)
	assert.Equal(t, cron.StatusReject, items[0].Status)
	assert.Equal(t, cron.StatusFulfill, items[1].Status)
	assert.NotNil(t, items[1].LastRunAt)
	assert.Equal(t, 1, items[1].Runs)
	assert.NotEmpty(t, items[1].LastTook)
}

func TestRunRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := cron.New(nil)
	s.Register(cron.Job{Name: "slow", Interval: time.Hour, Fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), "slow") }()
	<-started

	assert.ErrorIs(t, s.Run(context.Background(), "slow"), cron.ErrJobRunning)
	assert.Equal(t, cron.StatusRunning, s.List()[0].Status)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, cron.StatusFulfill, s.List()[0].Status)
}

func TestStartStopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	s := cron.New(nil)
	s.Register(cron.Job{Name: "tick", Interval: 5 * time.Millisecond, Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}
