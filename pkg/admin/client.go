package admin

import (
	"context"

	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/segmentio/kafka-go"
)

// Client is an interface for the cluster control-plane operations needed
// to plan and execute partition reassignments. Any implementation that
// satisfies this capability set is interchangeable; tests use an
// in-memory fake.
type Client interface {
	// GetClusterID gets the ID of the cluster.
	GetClusterID(ctx context.Context) (string, error)

	// GetBrokers gets information about the argument brokers, or all
	// brokers if ids is empty.
	GetBrokers(ctx context.Context, ids []int) ([]BrokerInfo, error)

	// GetBrokerIDs gets the IDs of all live brokers in the cluster.
	GetBrokerIDs(ctx context.Context) ([]int, error)

	// GetTopics gets information about the named topics, or all topics
	// if names is empty.
	GetTopics(ctx context.Context, names []string) ([]TopicInfo, error)

	// DescribeAssignments fetches the current replica assignment for
	// every partition of the argument topics. Topics that do not exist
	// are omitted from the result rather than failing the call.
	DescribeAssignments(
		ctx context.Context,
		topics []string,
	) (map[assign.PartitionKey][]int, error)

	// ListActiveReassignments lists the partition reassignments currently
	// executing in the cluster.
	ListActiveReassignments(ctx context.Context) ([]ActiveReassignment, error)

	// SubmitReassignment submits the target assignment as a cluster-level
	// reassignment. It returns per-partition rejections keyed by
	// partition; partitions absent from the map were accepted. The
	// returned error is reserved for transport-level failures.
	SubmitReassignment(
		ctx context.Context,
		target assign.ReplicaAssignment,
	) (map[assign.PartitionKey]error, error)

	// PollReassignments returns the subset of the argument partitions
	// that are still being reassigned.
	PollReassignments(
		ctx context.Context,
		keys []assign.PartitionKey,
	) ([]assign.PartitionKey, error)

	// UpdateBrokerConfig updates the dynamic configuration of the argument
	// broker. It returns the config keys that were updated.
	UpdateBrokerConfig(
		ctx context.Context,
		id int,
		configEntries []kafka.ConfigEntry,
	) ([]string, error)

	// UpdateTopicConfig updates the dynamic configuration of the argument
	// topic. It returns the config keys that were updated.
	UpdateTopicConfig(
		ctx context.Context,
		name string,
		configEntries []kafka.ConfigEntry,
	) ([]string, error)

	// Close closes the client.
	Close() error
}
