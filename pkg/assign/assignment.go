package assign

import (
	"fmt"
	"sort"

	"github.com/reassignctl/reassignctl/pkg/util"
)

// PartitionKey identifies a single partition of a topic. Keys are ordered
// by topic name first, then partition index.
type PartitionKey struct {
	Topic     string `json:"topic"`
	Partition int    `json:"partition"`
}

func (k PartitionKey) String() string {
	return fmt.Sprintf("%s/%d", k.Topic, k.Partition)
}

// Less returns whether this key sorts before the argument key.
func (k PartitionKey) Less(other PartitionKey) bool {
	return k.Topic < other.Topic ||
		(k.Topic == other.Topic && k.Partition < other.Partition)
}

// SortKeys sorts the argument keys in place by (topic, partition).
func SortKeys(keys []PartitionKey) {
	sort.Slice(
		keys, func(a, b int) bool {
			return keys[a].Less(keys[b])
		},
	)
}

// ReplicaAssignment maps each partition to an ordered list of replica
// broker IDs. The order encodes preference rank; index 0 is the preferred
// leader. Assignments are constructed once and treated as read-only.
type ReplicaAssignment map[PartitionKey][]int

// Keys returns the partition keys in this assignment, sorted.
func (a ReplicaAssignment) Keys() []PartitionKey {
	keys := []PartitionKey{}
	for key := range a {
		keys = append(keys, key)
	}
	SortKeys(keys)
	return keys
}

// Topics returns the distinct topic names referenced by this assignment,
// sorted.
func (a ReplicaAssignment) Topics() []string {
	topics := map[string]struct{}{}
	for key := range a {
		topics[key.Topic] = struct{}{}
	}
	return util.SortedStringKeys(topics)
}

// Brokers returns the distinct broker IDs referenced anywhere in this
// assignment, sorted.
func (a ReplicaAssignment) Brokers() []int {
	brokers := []int{}
	for _, replicas := range a {
		brokers = append(brokers, replicas...)
	}
	return util.DistinctSorted(brokers)
}
