package reassign

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reassignctl/reassignctl/pkg/assign"
)

// UnknownBrokerError indicates that the target assignment references
// broker IDs that are not live in the cluster. It is a fatal
// precondition failure: nothing has been submitted.
type UnknownBrokerError struct {
	BrokerIDs []int
}

func (e *UnknownBrokerError) Error() string {
	ids := append([]int{}, e.BrokerIDs...)
	sort.Ints(ids)

	strs := []string{}
	for _, id := range ids {
		strs = append(strs, fmt.Sprintf("%d", id))
	}

	return fmt.Sprintf(
		"assignment references unknown broker ids: %s",
		strings.Join(strs, ", "),
	)
}

// ConflictingReassignmentError indicates that the cluster already has an
// active reassignment. Running a second plan on top of one would make
// throttle scoping and completion tracking meaningless, so this is a
// fatal precondition failure.
type ConflictingReassignmentError struct {
	Active []assign.PartitionKey
}

func (e *ConflictingReassignmentError) Error() string {
	keys := append([]assign.PartitionKey{}, e.Active...)
	assign.SortKeys(keys)

	strs := []string{}
	for _, key := range keys {
		strs = append(strs, key.String())
	}

	return fmt.Sprintf(
		"cluster already has an active reassignment for: %s",
		strings.Join(strs, ", "),
	)
}

// PartialFailureError indicates that the cluster rejected some (possibly
// all) partitions of a submitted reassignment. Partitions absent from
// Rejections were accepted and are moving.
type PartialFailureError struct {
	Rejections map[assign.PartitionKey]error
}

func (e *PartialFailureError) Error() string {
	keys := []assign.PartitionKey{}
	for key := range e.Rejections {
		keys = append(keys, key)
	}
	assign.SortKeys(keys)

	strs := []string{}
	for _, key := range keys {
		strs = append(strs, fmt.Sprintf("%s (%v)", key, e.Rejections[key]))
	}

	return fmt.Sprintf(
		"reassignment rejected for %d partition(s): %s",
		len(keys),
		strings.Join(strs, ", "),
	)
}

// Keys returns the rejected partitions, sorted.
func (e *PartialFailureError) Keys() []assign.PartitionKey {
	keys := []assign.PartitionKey{}
	for key := range e.Rejections {
		keys = append(keys, key)
	}
	assign.SortKeys(keys)
	return keys
}

// TimedOutError indicates that the completion wait deadline elapsed with
// partitions still moving. It is advisory: the cluster keeps copying
// data and the reassignment will finish on its own.
type TimedOutError struct {
	Remaining []assign.PartitionKey
}

func (e *TimedOutError) Error() string {
	keys := append([]assign.PartitionKey{}, e.Remaining...)
	assign.SortKeys(keys)

	strs := []string{}
	for _, key := range keys {
		strs = append(strs, key.String())
	}

	return fmt.Sprintf(
		"timed out waiting for reassignment; still moving: %s",
		strings.Join(strs, ", "),
	)
}
