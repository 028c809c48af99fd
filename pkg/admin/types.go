package admin

import (
	"sort"
	"strings"

	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/reassignctl/reassignctl/pkg/util"
)

const (
	// LeaderThrottledKey is the broker config key for the leader throttle rate.
	LeaderThrottledKey = "leader.replication.throttled.rate"

	// FollowerThrottledKey is the broker config key for the follower throttle rate.
	FollowerThrottledKey = "follower.replication.throttled.rate"

	// LogDirThrottledKey is the broker config key for the log-dir move throttle rate.
	LogDirThrottledKey = "replica.alter.log.dirs.io.max.bytes.per.second"

	// LeaderReplicasThrottledKey is the topic config key for the leader replicas
	// that should be throttled.
	LeaderReplicasThrottledKey = "leader.replication.throttled.replicas"

	// FollowerReplicasThrottledKey is the topic config key for the follower replicas
	// that should be throttled.
	FollowerReplicasThrottledKey = "follower.replication.throttled.replicas"
)

// BrokerInfo represents the information fetched about a single broker.
type BrokerInfo struct {
	ID     int               `json:"id"`
	Host   string            `json:"host"`
	Port   int32             `json:"port"`
	Rack   string            `json:"rack"`
	Config map[string]string `json:"config"`
}

// IsThrottled returns whether this broker has a throttle rate config set.
func (b BrokerInfo) IsThrottled() bool {
	return b.Config[LeaderThrottledKey] != "" ||
		b.Config[FollowerThrottledKey] != ""
}

// TopicInfo represents the information fetched about a single topic.
type TopicInfo struct {
	Name       string            `json:"name"`
	Config     map[string]string `json:"config"`
	Partitions []PartitionInfo   `json:"partitions"`
}

// PartitionInfo represents the information fetched about a single
// topic partition.
type PartitionInfo struct {
	Topic    string `json:"topic"`
	ID       int    `json:"id"`
	Leader   int    `json:"leader"`
	Replicas []int  `json:"replicas"`
	ISR      []int  `json:"isr"`
}

// Assignments returns the topic's current replica assignment, keyed by
// partition.
func (t TopicInfo) Assignments() map[assign.PartitionKey][]int {
	assignments := map[assign.PartitionKey][]int{}

	for _, partition := range t.Partitions {
		key := assign.PartitionKey{
			Topic:     t.Name,
			Partition: partition.ID,
		}
		assignments[key] = util.CopyInts(partition.Replicas)
	}

	return assignments
}

// ActiveReassignment describes one partition reassignment currently
// executing in the cluster.
type ActiveReassignment struct {
	Key              assign.PartitionKey `json:"key"`
	Replicas         []int               `json:"replicas"`
	AddingReplicas   []int               `json:"addingReplicas"`
	RemovingReplicas []int               `json:"removingReplicas"`
}

// SortReassignments sorts the argument reassignments in place by their
// partition keys.
func SortReassignments(reassignments []ActiveReassignment) {
	sort.Slice(
		reassignments, func(a, b int) bool {
			return reassignments[a].Key.Less(reassignments[b].Key)
		},
	)
}

// ReassignmentKeys returns the partition keys of the argument
// reassignments, sorted.
func ReassignmentKeys(reassignments []ActiveReassignment) []assign.PartitionKey {
	keys := []assign.PartitionKey{}
	for _, reassignment := range reassignments {
		keys = append(keys, reassignment.Key)
	}
	assign.SortKeys(keys)
	return keys
}

// BrokerIDs returns the IDs of the argument brokers, in order.
func BrokerIDs(brokers []BrokerInfo) []int {
	brokerIDs := []int{}
	for _, broker := range brokers {
		brokerIDs = append(brokerIDs, broker.ID)
	}
	return brokerIDs
}

// ThrottledBrokerIDs returns the IDs of the argument brokers that have
// a throttle config set.
func ThrottledBrokerIDs(brokers []BrokerInfo) []int {
	brokerIDs := []int{}
	for _, broker := range brokers {
		if broker.IsThrottled() {
			brokerIDs = append(brokerIDs, broker.ID)
		}
	}
	return brokerIDs
}

func prettyConfig(config map[string]string) string {
	rows := []string{}
	for key, value := range config {
		rows = append(rows, key+"="+value)
	}
	sort.Strings(rows)
	return strings.Join(rows, "\n")
}
