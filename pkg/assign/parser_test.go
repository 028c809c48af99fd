package assign

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlan(t *testing.T) {
	contents := []byte(`{
		"version": 1,
		"partitions": [
			{"topic": "topic-a", "partition": 0, "replicas": [1, 2, 3]},
			{"topic": "topic-a", "partition": 1, "replicas": [2, 3, 4]},
			{"topic": "topic-b", "partition": 0, "replicas": [3, 1]}
		]
	}`)

	plan, err := ParsePlan(contents)
	require.NoError(t, err)

	assert.Equal(
		t,
		ReplicaAssignment{
			{Topic: "topic-a", Partition: 0}: {1, 2, 3},
			{Topic: "topic-a", Partition: 1}: {2, 3, 4},
			{Topic: "topic-b", Partition: 0}: {3, 1},
		},
		plan.Assignment,
	)
	assert.Empty(t, plan.LogDirs)
	assert.Equal(t, []string{"topic-a", "topic-b"}, plan.Assignment.Topics())
	assert.Equal(t, []int{1, 2, 3, 4}, plan.Assignment.Brokers())
}

func TestParsePlanYAML(t *testing.T) {
	contents := []byte(`
version: 1
partitions:
  - topic: topic-a
    partition: 0
    replicas: [5, 6]
`)

	plan, err := ParsePlan(contents)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]int{5, 6},
		plan.Assignment[PartitionKey{Topic: "topic-a", Partition: 0}],
	)
}

func TestParsePlanLogDirs(t *testing.T) {
	contents := []byte(`{
		"version": 1,
		"partitions": [
			{
				"topic": "topic-a",
				"partition": 2,
				"replicas": [1, 2],
				"log_dirs": ["/data/d1", "any"]
			}
		]
	}`)

	plan, err := ParsePlan(contents)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{"/data/d1", "any"},
		plan.LogDirs[PartitionKey{Topic: "topic-a", Partition: 2}],
	)
}

func TestParsePlanErrors(t *testing.T) {
	type parseTestCase struct {
		description string
		contents    string
	}

	testCases := []parseTestCase{
		{
			description: "unsupported version",
			contents: `{
				"version": 2,
				"partitions": [
					{"topic": "topic-a", "partition": 0, "replicas": [1]}
				]
			}`,
		},
		{
			description: "missing topic",
			contents: `{
				"version": 1,
				"partitions": [
					{"partition": 0, "replicas": [1]}
				]
			}`,
		},
		{
			description: "missing partition index",
			contents: `{
				"version": 1,
				"partitions": [
					{"topic": "topic-a", "replicas": [1]}
				]
			}`,
		},
		{
			description: "empty replica list",
			contents: `{
				"version": 1,
				"partitions": [
					{"topic": "topic-a", "partition": 0, "replicas": []}
				]
			}`,
		},
		{
			description: "duplicate partition",
			contents: `{
				"version": 1,
				"partitions": [
					{"topic": "topic-a", "partition": 0, "replicas": [1]},
					{"topic": "topic-a", "partition": 0, "replicas": [2]}
				]
			}`,
		},
		{
			description: "log dirs length mismatch",
			contents: `{
				"version": 1,
				"partitions": [
					{
						"topic": "topic-a",
						"partition": 0,
						"replicas": [1, 2],
						"log_dirs": ["/data/d1"]
					}
				]
			}`,
		},
		{
			description: "no partitions",
			contents:    `{"version": 1, "partitions": []}`,
		},
		{
			description: "unrecognized field",
			contents: `{
				"version": 1,
				"partitions": [
					{"topic": "topic-a", "partition": 0, "replicas": [1], "extra": true}
				]
			}`,
		},
		{
			description: "not a document",
			contents:    `[1, 2, 3]`,
		},
	}

	for _, testCase := range testCases {
		_, err := ParsePlan([]byte(testCase.contents))
		require.Error(t, err, testCase.description)

		var malformedErr *MalformedAssignmentError
		assert.True(
			t,
			errors.As(err, &malformedErr),
			testCase.description,
		)
	}
}
