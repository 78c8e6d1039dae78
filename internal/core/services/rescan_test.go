package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cerebro/internal/core/domain"
	"github.com/custodia-labs/cerebro/internal/core/ports/driving"
)

type countingIngestor struct {
	scans atomic.Int32
}

func (c *countingIngestor) Scan(context.Context) (*domain.IngestReport, error) {
	c.scans.Add(1)
	return &domain.IngestReport{}, nil
}

func (c *countingIngestor) Status() driving.IngestStatus {
	return driving.IngestStatus{}
}

func TestNewRescanner_RejectsNonPositiveInterval(t *testing.T) {
	_, err := NewRescanner(0, &countingIngestor{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRescanner_ScansPeriodically(t *testing.T) {
	ingestor := &countingIngestor{}
	r, err := NewRescanner(10*time.Millisecond, ingestor)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return ingestor.scans.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	r.Stop()
	assert.NoError(t, <-done)
}

func TestRescanner_StopsOnContextCancel(t *testing.T) {
	ingestor := &countingIngestor{}
	r, err := NewRescanner(time.Hour, ingestor)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("rescanner did not stop on context cancellation")
	}
}
