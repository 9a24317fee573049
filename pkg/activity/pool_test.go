package activity_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitpulse/pkg/activity"
)

func TestExtractAll_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32

	open := func(path string) (activity.Source, error) {
		if strings.HasPrefix(path, "/bad") {
			return nil, activity.ErrNotRepository
		}

		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)

		return &fakeSource{commits: []activity.Commit{{Hash: commitHash(0), When: hoursAgo(1)}}}, nil
	}

	ex := activity.NewExtractor(activity.WithOpener(open), activity.WithClock(func() time.Time { return fixedNow }))

	paths := []string{"/r/a", "/bad/x", "/r/b", "/r/c", "/bad/y", "/r/d"}

	records, err := ex.ExtractAll(context.Background(), paths, 7, 2)
	require.NoError(t, err)

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExtractAll_DefaultWorkers(t *testing.T) {
	t.Parallel()

	src := func(string) (activity.Source, error) {
		return &fakeSource{}, nil
	}

	ex := activity.NewExtractor(activity.WithOpener(src))

	records, err := ex.ExtractAll(context.Background(), []string{"/a", "/b"}, 7, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExtractAll_Empty(t *testing.T) {
	t.Parallel()

	records, err := activity.NewExtractor().ExtractAll(context.Background(), nil, 7, 4)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractAll_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := activity.NewExtractor(activity.WithOpener(func(string) (activity.Source, error) {
		return &fakeSource{}, nil
	}))

	_, err := ex.ExtractAll(ctx, []string{"/a", "/b"}, 7, 1)
	require.ErrorIs(t, err, context.Canceled)
}
