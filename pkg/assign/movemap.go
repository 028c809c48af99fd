package assign

import (
	"github.com/reassignctl/reassignctl/pkg/util"
)

// Move describes the replica movement for a single partition. Values
// are derived once from the current and target assignments and are not
// mutated afterwards.
type Move struct {
	// CurrentLeader is the preferred leader of the partition before the
	// move (index 0 of the current replica list), or -1 if the partition
	// has no current assignment.
	CurrentLeader int

	// CurrentReplicas is the partition's replica list before the move.
	CurrentReplicas []int

	// ProposedReplicas is the partition's replica list after the move.
	ProposedReplicas []int
}

// Gaining returns the brokers that are receiving a new replica of the
// partition, in proposed order.
func (m Move) Gaining() []int {
	return util.Subtract(m.ProposedReplicas, m.CurrentReplicas)
}

// Losing returns the brokers that are giving up a replica of the
// partition, in current order.
func (m Move) Losing() []int {
	return util.Subtract(m.CurrentReplicas, m.ProposedReplicas)
}

// MoveMap maps each partition whose replica membership is changing to
// its Move. Partitions whose target replica set has the same members as
// the current set (in any order) are excluded.
type MoveMap map[PartitionKey]Move

// Keys returns the partitions in the map, sorted.
func (m MoveMap) Keys() []PartitionKey {
	keys := []PartitionKey{}
	for key := range m {
		keys = append(keys, key)
	}
	SortKeys(keys)
	return keys
}

// GainingBrokers returns the distinct brokers gaining at least one
// replica across all moves, sorted.
func (m MoveMap) GainingBrokers() []int {
	brokers := []int{}
	for _, move := range m {
		brokers = append(brokers, move.Gaining()...)
	}
	return util.DistinctSorted(brokers)
}

// LeadersWithIncoming returns the distinct current leaders of partitions
// that have at least one incoming replica, sorted. A leader that is
// itself leaving the partition still appears here: while the move is in
// flight it keeps serving reads to feed the new replicas.
func (m MoveMap) LeadersWithIncoming() []int {
	brokers := []int{}
	for _, move := range m {
		if move.CurrentLeader >= 0 && len(move.Gaining()) > 0 {
			brokers = append(brokers, move.CurrentLeader)
		}
	}
	return util.DistinctSorted(brokers)
}

// TopicsForBroker returns the sorted topics in which the argument broker
// is either the current leader of a moving partition or is gaining a
// replica.
func (m MoveMap) TopicsForBroker(brokerID int) []string {
	topics := map[string]struct{}{}

	for key, move := range m {
		if move.CurrentLeader == brokerID && len(move.Gaining()) > 0 {
			topics[key.Topic] = struct{}{}
			continue
		}
		for _, gaining := range move.Gaining() {
			if gaining == brokerID {
				topics[key.Topic] = struct{}{}
				break
			}
		}
	}

	return util.SortedStringKeys(topics)
}

// CalculateMoves diffs the current assignment against the target and
// returns the resulting MoveMap. The current map may omit partitions
// (e.g. for topics that do not exist yet); those partitions are treated
// as having no current replicas, so every target replica is gaining and
// CurrentLeader is -1.
func CalculateMoves(
	current map[PartitionKey][]int,
	target ReplicaAssignment,
) MoveMap {
	moves := MoveMap{}

	for key, proposed := range target {
		curr := current[key]
		if util.SameElements(curr, proposed) {
			// Rearranging preference order copies no data
			continue
		}

		move := Move{
			CurrentLeader:    -1,
			CurrentReplicas:  util.CopyInts(curr),
			ProposedReplicas: util.CopyInts(proposed),
		}
		if len(curr) > 0 {
			move.CurrentLeader = curr[0]
		}

		moves[key] = move
	}

	return moves
}
