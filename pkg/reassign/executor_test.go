package reassign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reassignctl/reassignctl/pkg/admin"
	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory admin.Client that records the sequence of
// calls made against it.
type fakeClient struct {
	calls []string

	brokerIDs       []int
	active          []admin.ActiveReassignment
	current         map[assign.PartitionKey][]int
	rejections      map[assign.PartitionKey]error
	brokerConfigErr error

	// Successive PollReassignments results; the last entry repeats once
	// the slice is exhausted.
	pollResults [][]assign.PartitionKey
	pollCount   int
}

var _ admin.Client = (*fakeClient)(nil)

func (f *fakeClient) GetClusterID(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "GetClusterID")
	return "test-cluster", nil
}

func (f *fakeClient) GetBrokers(
	ctx context.Context,
	ids []int,
) ([]admin.BrokerInfo, error) {
	f.calls = append(f.calls, "GetBrokers")
	return nil, nil
}

func (f *fakeClient) GetBrokerIDs(ctx context.Context) ([]int, error) {
	f.calls = append(f.calls, "GetBrokerIDs")
	return f.brokerIDs, nil
}

func (f *fakeClient) GetTopics(
	ctx context.Context,
	names []string,
) ([]admin.TopicInfo, error) {
	f.calls = append(f.calls, "GetTopics")
	return nil, nil
}

func (f *fakeClient) DescribeAssignments(
	ctx context.Context,
	topics []string,
) (map[assign.PartitionKey][]int, error) {
	f.calls = append(f.calls, "DescribeAssignments")
	return f.current, nil
}

func (f *fakeClient) ListActiveReassignments(
	ctx context.Context,
) ([]admin.ActiveReassignment, error) {
	f.calls = append(f.calls, "ListActiveReassignments")
	return f.active, nil
}

func (f *fakeClient) SubmitReassignment(
	ctx context.Context,
	target assign.ReplicaAssignment,
) (map[assign.PartitionKey]error, error) {
	f.calls = append(f.calls, "SubmitReassignment")
	return f.rejections, nil
}

func (f *fakeClient) PollReassignments(
	ctx context.Context,
	keys []assign.PartitionKey,
) ([]assign.PartitionKey, error) {
	f.calls = append(f.calls, "PollReassignments")
	if len(f.pollResults) == 0 {
		return nil, nil
	}
	index := f.pollCount
	if index >= len(f.pollResults) {
		index = len(f.pollResults) - 1
	}
	f.pollCount++
	return f.pollResults[index], nil
}

func (f *fakeClient) UpdateBrokerConfig(
	ctx context.Context,
	id int,
	configEntries []kafka.ConfigEntry,
) ([]string, error) {
	f.calls = append(f.calls, "UpdateBrokerConfig")
	return nil, f.brokerConfigErr
}

func (f *fakeClient) UpdateTopicConfig(
	ctx context.Context,
	name string,
	configEntries []kafka.ConfigEntry,
) ([]string, error) {
	f.calls = append(f.calls, "UpdateTopicConfig")
	return nil, nil
}

func (f *fakeClient) Close() error {
	return nil
}

func testPlan() assign.Plan {
	return assign.Plan{
		Assignment: assign.ReplicaAssignment{
			{Topic: "topic-a", Partition: 0}: {2, 3, 4},
		},
	}
}

func testCurrent() map[assign.PartitionKey][]int {
	return map[assign.PartitionKey][]int{
		{Topic: "topic-a", Partition: 0}: {1, 2, 3},
	}
}

func TestExecutorHappyPath(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		current:   testCurrent(),
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Reads first, then throttles (brokers 1 and 4, topic-a), then the
	// submission itself
	assert.Equal(
		t,
		[]string{
			"GetBrokerIDs",
			"ListActiveReassignments",
			"DescribeAssignments",
			"UpdateBrokerConfig",
			"UpdateBrokerConfig",
			"UpdateTopicConfig",
			"SubmitReassignment",
		},
		client.calls,
	)
}

func TestExecutorUnknownBrokers(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3},
	}
	executor := NewExecutor(client, ExecutorConfig{})

	plan := assign.Plan{
		Assignment: assign.ReplicaAssignment{
			{Topic: "topic-a", Partition: 0}: {1, 2, 99},
		},
	}
	result, err := executor.Execute(ctx, plan)
	require.Error(t, err)
	assert.False(t, result.Success)

	var unknownErr *UnknownBrokerError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, []int{99}, unknownErr.BrokerIDs)

	// Validation fails before anything else is asked of the cluster
	assert.Equal(t, []string{"GetBrokerIDs"}, client.calls)
}

func TestExecutorConflictingReassignment(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		active: []admin.ActiveReassignment{
			{
				Key: assign.PartitionKey{
					Topic:     "other-topic",
					Partition: 2,
				},
				Replicas: []int{1, 2},
			},
		},
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.Error(t, err)
	assert.False(t, result.Success)

	var conflictErr *ConflictingReassignmentError
	require.True(t, errors.As(err, &conflictErr))
	assert.Contains(t, result.Message, "other-topic/2")

	assert.NotContains(t, client.calls, "SubmitReassignment")
	assert.NotContains(t, client.calls, "UpdateBrokerConfig")
}

func TestExecutorPartialFailure(t *testing.T) {
	ctx := context.Background()
	badKey := assign.PartitionKey{Topic: "no-such-topic", Partition: 0}
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		current:   testCurrent(),
		rejections: map[assign.PartitionKey]error{
			badKey: errors.New("unknown topic or partition"),
		},
	}
	executor := NewExecutor(client, ExecutorConfig{})

	plan := testPlan()
	plan.Assignment[badKey] = []int{1, 2}

	result, err := executor.Execute(ctx, plan)
	require.Error(t, err)
	assert.False(t, result.Success)

	var partialErr *PartialFailureError
	require.True(t, errors.As(err, &partialErr))
	assert.Equal(t, []assign.PartitionKey{badKey}, partialErr.Keys())

	// All partitions were attempted despite the rejection
	assert.Contains(t, client.calls, "SubmitReassignment")
	assert.Contains(t, result.Message, "no-such-topic/0")
	assert.NotContains(t, result.Message, "topic-a/0")
}

func TestExecutorIdempotentTarget(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		current: map[assign.PartitionKey][]int{
			{Topic: "topic-a", Partition: 0}: {2, 3, 4},
		},
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Nothing moves, so nothing is throttled; submission still goes
	// through and lets the cluster compute the (empty) diff
	assert.NotContains(t, client.calls, "UpdateBrokerConfig")
	assert.NotContains(t, client.calls, "UpdateTopicConfig")
	assert.Contains(t, client.calls, "SubmitReassignment")
}

func TestExecutorThrottleFailureNonFatal(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		brokerIDs:       []int{1, 2, 3, 4},
		current:         testCurrent(),
		brokerConfigErr: errors.New("config rejected"),
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "throttle apply failed")
	assert.Contains(t, client.calls, "SubmitReassignment")
}

func TestExecutorDryRun(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		current:   testCurrent(),
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
		DryRun:              true,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.NotContains(t, client.calls, "SubmitReassignment")
	assert.NotContains(t, client.calls, "UpdateBrokerConfig")
	assert.Contains(t, result.Message, "topic-a")
}

func TestExecutorWaitRemovesThrottles(t *testing.T) {
	ctx := context.Background()
	key := assign.PartitionKey{Topic: "topic-a", Partition: 0}
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		current:   testCurrent(),
		pollResults: [][]assign.PartitionKey{
			{key},
			{},
		},
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
		Wait:                true,
		PollInterval:        time.Millisecond,
		WaitTimeout:         5 * time.Second,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Throttles applied to brokers 1 and 4 before submission, then
	// cleared from both after the wait succeeds
	var brokerUpdates int
	for _, call := range client.calls {
		if call == "UpdateBrokerConfig" {
			brokerUpdates++
		}
	}
	assert.Equal(t, 4, brokerUpdates)
	assert.Equal(
		t,
		"UpdateBrokerConfig",
		client.calls[len(client.calls)-3],
	)
}

func TestExecutorWaitTimeout(t *testing.T) {
	ctx := context.Background()
	key := assign.PartitionKey{Topic: "topic-a", Partition: 0}
	client := &fakeClient{
		brokerIDs: []int{1, 2, 3, 4},
		current:   testCurrent(),
		pollResults: [][]assign.PartitionKey{
			{key},
		},
	}
	executor := NewExecutor(client, ExecutorConfig{
		BrokerThrottleBytes: 5000000,
		Wait:                true,
		PollInterval:        time.Millisecond,
		WaitTimeout:         10 * time.Millisecond,
	})

	result, err := executor.Execute(ctx, testPlan())
	require.Error(t, err)
	assert.False(t, result.Success)

	var timeoutErr *TimedOutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, []assign.PartitionKey{key}, timeoutErr.Remaining)
	assert.Contains(t, result.Message, "throttles are left in place")
}
