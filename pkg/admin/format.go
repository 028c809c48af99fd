package admin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/reassignctl/reassignctl/pkg/util"
)

// FormatBrokers creates a pretty table from a list of brokers.
func FormatBrokers(brokers []BrokerInfo, full bool) string {
	buf := &bytes.Buffer{}

	headers := []any{
		"ID",
		"Host",
		"Port",
		"Rack",
		"Leader\nThrottle",
		"Follower\nThrottle",
	}

	if full {
		headers = append(headers, "Config")
	}

	table := newFormatTable(buf, headers)
	table.Header(headers...)

	for _, broker := range brokers {
		row := []string{
			fmt.Sprintf("%d", broker.ID),
			broker.Host,
			fmt.Sprintf("%d", broker.Port),
			broker.Rack,
			broker.Config[LeaderThrottledKey],
			broker.Config[FollowerThrottledKey],
		}

		if full {
			row = append(row, prettyConfig(broker.Config))
		}

		table.Append(row)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatTopicPartitions creates a pretty table from the partitions of
// one or more topics.
func FormatTopicPartitions(topics []TopicInfo) string {
	buf := &bytes.Buffer{}

	headers := []any{
		"Topic",
		"Partition",
		"Leader",
		"Replicas",
		"ISR",
	}

	table := newFormatTable(buf, headers)
	table.Header(headers...)

	for _, topic := range topics {
		for _, partition := range topic.Partitions {
			table.Append(
				[]string{
					partition.Topic,
					fmt.Sprintf("%d", partition.ID),
					fmt.Sprintf("%d", partition.Leader),
					replicasStr(partition.Replicas),
					replicasStr(partition.ISR),
				},
			)
		}
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatReassignments creates a pretty table from a list of active
// reassignments.
func FormatReassignments(reassignments []ActiveReassignment) string {
	buf := &bytes.Buffer{}

	headers := []any{
		"Topic",
		"Partition",
		"Replicas",
		"Adding",
		"Removing",
	}

	table := newFormatTable(buf, headers)
	table.Header(headers...)

	for _, reassignment := range reassignments {
		table.Append(
			[]string{
				reassignment.Key.Topic,
				fmt.Sprintf("%d", reassignment.Key.Partition),
				replicasStr(reassignment.Replicas),
				replicasStr(reassignment.AddingReplicas),
				replicasStr(reassignment.RemovingReplicas),
			},
		)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FormatMoves creates a pretty table of the proposed replica movements,
// one row per moving partition.
func FormatMoves(moves assign.MoveMap) string {
	buf := &bytes.Buffer{}

	headers := []any{
		"Topic",
		"Partition",
		"Curr\nLeader",
		"Curr\nReplicas",
		"Proposed\nReplicas",
		"Gaining",
		"Losing",
	}

	table := newFormatTable(buf, headers)
	table.Header(headers...)

	for _, key := range moves.Keys() {
		move := moves[key]

		var leaderStr string
		if move.CurrentLeader >= 0 {
			leaderStr = fmt.Sprintf("%d", move.CurrentLeader)
		}

		table.Append(
			[]string{
				key.Topic,
				fmt.Sprintf("%d", key.Partition),
				leaderStr,
				replicasStr(move.CurrentReplicas),
				proposedReplicasStr(move),
				replicasStr(move.Gaining()),
				replicasStr(move.Losing()),
			},
		)
	}

	table.Render()
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

func newFormatTable(buf *bytes.Buffer, headers []any) *tablewriter.Table {
	configBuilder := tablewriter.NewConfigBuilder().WithRowAutoWrap(tw.WrapNone)
	for i := range headers {
		configBuilder = configBuilder.ForColumn(i).WithAlignment(tw.AlignLeft).Build()
	}

	return tablewriter.NewTable(buf,
		tablewriter.WithConfig(configBuilder.Build()),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Top:    tw.On,
				Right:  tw.Off,
				Bottom: tw.On,
			},
		}),
	)
}

// proposedReplicasStr renders the proposed replica list for a move,
// highlighting replicas that are new to the partition in red and ones
// that only changed position in cyan.
func proposedReplicasStr(move assign.Move) string {
	if !util.InTerminal() {
		return replicasStr(move.ProposedReplicas)
	}

	added := color.New(color.FgRed).SprintfFunc()
	moved := color.New(color.FgCyan).SprintfFunc()

	elements := []string{}
	for r, replica := range move.ProposedReplicas {
		var element string

		if r < len(move.CurrentReplicas) && replica == move.CurrentReplicas[r] {
			element = fmt.Sprintf("%d", replica)
		} else if replicaIndex(move.CurrentReplicas, replica) != -1 {
			element = moved("%d", replica)
		} else {
			element = added("%d", replica)
		}

		elements = append(elements, element)
	}

	return strings.Join(elements, ",")
}

func replicaIndex(replicas []int, target int) int {
	for r, replica := range replicas {
		if replica == target {
			return r
		}
	}
	return -1
}

func replicasStr(replicas []int) string {
	elements := []string{}
	for _, replica := range replicas {
		elements = append(elements, fmt.Sprintf("%d", replica))
	}
	return strings.Join(elements, ",")
}
