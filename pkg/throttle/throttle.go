// Package throttle derives and applies replication throttles for
// in-flight partition reassignments. Throttles are scoped to the brokers
// that actually take part in a data copy: the current leaders that feed
// new replicas and the brokers receiving them.
package throttle

import (
	"fmt"
	"sort"

	"github.com/reassignctl/reassignctl/pkg/admin"
	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/reassignctl/reassignctl/pkg/util"
	"github.com/segmentio/kafka-go"
)

// BrokerThrottle captures the throttle rates to set on a single broker.
// A zero rate means the corresponding config key is left untouched.
type BrokerThrottle struct {
	Broker            int
	LeaderRateBytes   int64
	FollowerRateBytes int64
	LogDirRateBytes   int64
}

// Spec maps each moving broker to its throttle rates and to the topics
// it is being throttled for. Derived from a MoveMap, never mutated after
// construction.
type Spec struct {
	Brokers map[int]BrokerThrottle
	Topics  map[int][]string
}

// Empty returns whether this spec throttles anything at all.
func (s Spec) Empty() bool {
	return len(s.Brokers) == 0
}

// BrokerIDs returns the throttled broker IDs, sorted.
func (s Spec) BrokerIDs() []int {
	brokerIDs := []int{}
	for brokerID := range s.Brokers {
		brokerIDs = append(brokerIDs, brokerID)
	}
	sort.Ints(brokerIDs)
	return brokerIDs
}

// TopicNames returns the distinct topics throttled across all brokers,
// sorted.
func (s Spec) TopicNames() []string {
	topics := map[string]struct{}{}
	for _, brokerTopics := range s.Topics {
		for _, topic := range brokerTopics {
			topics[topic] = struct{}{}
		}
	}
	return util.SortedStringKeys(topics)
}

// BuildSpec derives the throttle spec for the argument moves from a
// single inter-broker rate and an optional log-dir move rate.
//
// The leader throttle goes to every broker that is the current leader of
// a partition with at least one incoming replica. A leader that is
// itself leaving still gets the throttle: it keeps feeding the new
// replicas until the move completes. The follower throttle goes to every
// broker gaining a replica.
func BuildSpec(
	moves assign.MoveMap,
	interBrokerRateBytes int64,
	logDirRateBytes int64,
) Spec {
	spec := Spec{
		Brokers: map[int]BrokerThrottle{},
		Topics:  map[int][]string{},
	}
	if interBrokerRateBytes <= 0 || len(moves) == 0 {
		return spec
	}

	for _, brokerID := range moves.LeadersWithIncoming() {
		throttle := spec.Brokers[brokerID]
		throttle.Broker = brokerID
		throttle.LeaderRateBytes = interBrokerRateBytes
		spec.Brokers[brokerID] = throttle
	}

	for _, brokerID := range moves.GainingBrokers() {
		throttle := spec.Brokers[brokerID]
		throttle.Broker = brokerID
		throttle.FollowerRateBytes = interBrokerRateBytes
		if logDirRateBytes > 0 {
			throttle.LogDirRateBytes = logDirRateBytes
		}
		spec.Brokers[brokerID] = throttle
	}

	for brokerID := range spec.Brokers {
		spec.Topics[brokerID] = moves.TopicsForBroker(brokerID)
	}

	return spec
}

// ConfigEntries returns the broker config entries for this throttle.
// Only positive rates produce entries.
func (b BrokerThrottle) ConfigEntries() []kafka.ConfigEntry {
	entries := []kafka.ConfigEntry{}

	if b.LeaderRateBytes > 0 {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  admin.LeaderThrottledKey,
			ConfigValue: fmt.Sprintf("%d", b.LeaderRateBytes),
		})
	}
	if b.FollowerRateBytes > 0 {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  admin.FollowerThrottledKey,
			ConfigValue: fmt.Sprintf("%d", b.FollowerRateBytes),
		})
	}
	if b.LogDirRateBytes > 0 {
		entries = append(entries, kafka.ConfigEntry{
			ConfigName:  admin.LogDirThrottledKey,
			ConfigValue: fmt.Sprintf("%d", b.LogDirRateBytes),
		})
	}

	return entries
}
