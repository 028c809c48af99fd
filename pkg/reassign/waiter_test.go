package reassign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoller struct {
	results [][]assign.PartitionKey
	count   int
}

func (f *fakePoller) PollReassignments(
	ctx context.Context,
	keys []assign.PartitionKey,
) ([]assign.PartitionKey, error) {
	index := f.count
	f.count++
	if len(f.results) == 0 {
		return nil, nil
	}
	if index >= len(f.results) {
		index = len(f.results) - 1
	}
	return f.results[index], nil
}

func TestWaiterCompletes(t *testing.T) {
	ctx := context.Background()
	keys := []assign.PartitionKey{
		{Topic: "topic-a", Partition: 0},
		{Topic: "topic-a", Partition: 1},
	}
	poller := &fakePoller{
		results: [][]assign.PartitionKey{
			keys,
			{keys[1]},
			{},
		},
	}
	waiter := NewWaiter(poller, time.Millisecond, 5*time.Second)

	err := waiter.Wait(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, 3, poller.count)
}

func TestWaiterAlreadyComplete(t *testing.T) {
	ctx := context.Background()
	poller := &fakePoller{}
	waiter := NewWaiter(poller, time.Millisecond, 5*time.Second)

	err := waiter.Wait(
		ctx,
		[]assign.PartitionKey{{Topic: "topic-a", Partition: 0}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, poller.count)
}

func TestWaiterTimesOut(t *testing.T) {
	ctx := context.Background()
	key := assign.PartitionKey{Topic: "topic-a", Partition: 0}
	poller := &fakePoller{
		results: [][]assign.PartitionKey{{key}},
	}
	waiter := NewWaiter(poller, time.Millisecond, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- waiter.Wait(ctx, []assign.PartitionKey{key})
	}()

	select {
	case err := <-done:
		var timeoutErr *TimedOutError
		require.True(t, errors.As(err, &timeoutErr))
		assert.Equal(
			t,
			[]assign.PartitionKey{key},
			timeoutErr.Remaining,
		)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter did not terminate")
	}
}

func TestWaiterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	key := assign.PartitionKey{Topic: "topic-a", Partition: 0}
	poller := &fakePoller{
		results: [][]assign.PartitionKey{{key}},
	}
	waiter := NewWaiter(poller, time.Millisecond, time.Hour)

	done := make(chan error, 1)
	go func() {
		done <- waiter.Wait(ctx, []assign.PartitionKey{key})
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter did not observe cancellation")
	}
}
