package reassign

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reassignctl/reassignctl/pkg/assign"
)

// Stage identifies the phase of an execution in which a failure was
// recorded.
type Stage string

const (
	StageThrottle Stage = "throttle"
	StageSubmit   Stage = "submit"
	StageWait     Stage = "wait"
)

// Failure is a single partition-scoped failure.
type Failure struct {
	Key   assign.PartitionKey
	Stage Stage
	Err   error
}

// Result is the overall outcome of an execution. Message carries the
// aggregated failure report; it may be non-empty even on success, e.g.
// when throttles could not be applied but the reassignment itself went
// through.
type Result struct {
	Success bool
	Message string
}

// Aggregator collects partition-scoped failures and free-form notes
// across the stages of an execution and renders them as a single
// deterministic report.
type Aggregator struct {
	failures []Failure
	notes    []string
}

// NewAggregator creates and returns a new Aggregator instance.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddFailure records a failure for a single partition.
func (a *Aggregator) AddFailure(
	key assign.PartitionKey,
	stage Stage,
	err error,
) {
	a.failures = append(a.failures, Failure{
		Key:   key,
		Stage: stage,
		Err:   err,
	})
}

// AddNote records a failure that is not scoped to a single partition,
// e.g. a broker-level throttle rejection.
func (a *Aggregator) AddNote(format string, args ...interface{}) {
	a.notes = append(a.notes, fmt.Sprintf(format, args...))
}

// Empty returns whether nothing has been recorded.
func (a *Aggregator) Empty() bool {
	return len(a.failures) == 0 && len(a.notes) == 0
}

// Failures returns the recorded partition failures sorted by partition
// key, then stage.
func (a *Aggregator) Failures() []Failure {
	failures := append([]Failure{}, a.failures...)
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Key != failures[j].Key {
			return failures[i].Key.Less(failures[j].Key)
		}
		return failures[i].Stage < failures[j].Stage
	})
	return failures
}

// Report renders everything recorded so far. Partition failures come
// first, sorted, one line each; notes follow in insertion order. The
// rendering depends only on the recorded contents, never on the order
// in which partition failures were added.
func (a *Aggregator) Report() string {
	lines := []string{}

	for _, failure := range a.Failures() {
		lines = append(
			lines,
			fmt.Sprintf(
				"%s: %s failed: %v",
				failure.Key,
				failure.Stage,
				failure.Err,
			),
		)
	}
	lines = append(lines, a.notes...)

	return strings.Join(lines, "\n")
}
