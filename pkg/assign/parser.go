package assign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/ghodss/yaml"
)

// SupportedPlanVersion is the only plan document version understood by
// the parser.
const SupportedPlanVersion = 1

// MalformedAssignmentError indicates that a plan document could not be
// parsed into a valid target assignment.
type MalformedAssignmentError struct {
	Reason string
}

func (e *MalformedAssignmentError) Error() string {
	return fmt.Sprintf("malformed assignment: %s", e.Reason)
}

// Plan is the parsed form of a reassignment plan document.
type Plan struct {
	// Assignment is the target replica assignment.
	Assignment ReplicaAssignment

	// LogDirs maps each partition to the log directories its replicas
	// should land in, parallel to the replica list. Empty if the plan
	// does not pin log directories.
	LogDirs map[PartitionKey][]string
}

type planDoc struct {
	Version    int             `json:"version"`
	Partitions []planPartition `json:"partitions"`
}

type planPartition struct {
	Topic     string   `json:"topic"`
	Partition *int     `json:"partition"`
	Replicas  []int    `json:"replicas"`
	LogDirs   []string `json:"log_dirs,omitempty"`
}

// ParsePlanFile loads a reassignment plan from a path to a JSON or YAML
// file.
func ParsePlanFile(path string) (Plan, error) {
	contents, err := ioutil.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	return ParsePlan(contents)
}

// ParsePlan parses a reassignment plan document. The document must carry
// version 1, and every partition entry must name a topic, a partition
// index, and a non-empty replica list; a topic+partition pair may appear
// at most once.
func ParsePlan(contents []byte) (Plan, error) {
	doc := planDoc{}
	if err := unmarshalStrict(contents, &doc); err != nil {
		return Plan{}, &MalformedAssignmentError{Reason: err.Error()}
	}

	if doc.Version != SupportedPlanVersion {
		return Plan{}, &MalformedAssignmentError{
			Reason: fmt.Sprintf(
				"unsupported version %d (only version %d is supported)",
				doc.Version,
				SupportedPlanVersion,
			),
		}
	}
	if len(doc.Partitions) == 0 {
		return Plan{}, &MalformedAssignmentError{
			Reason: "plan contains no partitions",
		}
	}

	plan := Plan{
		Assignment: ReplicaAssignment{},
		LogDirs:    map[PartitionKey][]string{},
	}

	for p, partition := range doc.Partitions {
		if partition.Topic == "" {
			return Plan{}, &MalformedAssignmentError{
				Reason: fmt.Sprintf("partition entry %d is missing a topic", p),
			}
		}
		if partition.Partition == nil {
			return Plan{}, &MalformedAssignmentError{
				Reason: fmt.Sprintf(
					"partition entry %d (topic %s) is missing a partition index",
					p,
					partition.Topic,
				),
			}
		}
		if len(partition.Replicas) == 0 {
			return Plan{}, &MalformedAssignmentError{
				Reason: fmt.Sprintf(
					"partition entry %d (topic %s) has an empty replica list",
					p,
					partition.Topic,
				),
			}
		}

		key := PartitionKey{
			Topic:     partition.Topic,
			Partition: *partition.Partition,
		}
		if _, ok := plan.Assignment[key]; ok {
			return Plan{}, &MalformedAssignmentError{
				Reason: fmt.Sprintf("duplicate entry for partition %s", key),
			}
		}

		if len(partition.LogDirs) > 0 {
			if len(partition.LogDirs) != len(partition.Replicas) {
				return Plan{}, &MalformedAssignmentError{
					Reason: fmt.Sprintf(
						"partition %s has %d log dirs for %d replicas",
						key,
						len(partition.LogDirs),
						len(partition.Replicas),
					),
				}
			}
			plan.LogDirs[key] = partition.LogDirs
		}

		plan.Assignment[key] = partition.Replicas
	}

	return plan, nil
}

// Unmarshal the argument document, but return an error if there are any
// unrecognized keys. YAML input is accepted since JSON is a subset of it.
func unmarshalStrict(contents []byte, obj interface{}) error {
	jsonBytes, err := yaml.YAMLToJSON(contents)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(obj)
}
