package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/reassignctl/reassignctl/pkg/assign"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// BrokerAdminClient is a Client implementation that talks directly to
// the cluster's broker APIs.
type BrokerAdminClient struct {
	connector *Connector
	client    *kafka.Client
	readOnly  bool
}

var _ Client = (*BrokerAdminClient)(nil)

// BrokerAdminClientConfig contains the configuration for constructing
// a BrokerAdminClient.
type BrokerAdminClientConfig struct {
	ConnectorConfig
	ReadOnly bool
}

// NewBrokerAdminClient constructs a new BrokerAdminClient instance.
func NewBrokerAdminClient(
	ctx context.Context,
	config BrokerAdminClientConfig,
) (*BrokerAdminClient, error) {
	connector, err := NewConnector(config.ConnectorConfig)
	if err != nil {
		return nil, err
	}

	client := &BrokerAdminClient{
		connector: connector,
		client:    connector.KafkaClient,
		readOnly:  config.ReadOnly,
	}

	// Check that we can reach the cluster at all before handing the
	// client back.
	if _, err := client.GetClusterID(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to cluster: %w", err)
	}

	return client, nil
}

func (c *BrokerAdminClient) GetClusterID(ctx context.Context) (string, error) {
	resp, err := c.client.Metadata(ctx, &kafka.MetadataRequest{
		Topics: []string{},
	})
	if err != nil {
		return "", err
	}
	return resp.ClusterID, nil
}

func (c *BrokerAdminClient) GetBrokers(ctx context.Context, ids []int) (
	[]BrokerInfo,
	error,
) {
	metadataResp, err := c.client.Metadata(
		ctx,
		&kafka.MetadataRequest{
			Topics: []string{},
		},
	)
	if err != nil {
		return nil, err
	}

	idsMap := map[int]struct{}{}
	for _, id := range ids {
		idsMap[id] = struct{}{}
	}

	brokerInfos := []BrokerInfo{}
	brokerIDs := []int{}
	brokerIDIndices := map[int]int{}

	for _, broker := range metadataResp.Brokers {
		if _, ok := idsMap[broker.ID]; !ok && len(idsMap) > 0 {
			continue
		}

		brokerIDIndices[broker.ID] = len(brokerInfos)
		brokerInfos = append(
			brokerInfos,
			BrokerInfo{
				ID:   broker.ID,
				Host: broker.Host,
				Port: int32(broker.Port),
				Rack: broker.Rack,
			},
		)
		brokerIDs = append(brokerIDs, broker.ID)
	}

	configsResp, err := c.client.DescribeConfigs(
		ctx,
		kafka.DescribeConfigsRequest{
			Brokers: brokerIDs,
		},
	)
	if err != nil {
		return nil, err
	}

	for _, broker := range configsResp.Brokers {
		index := brokerIDIndices[broker.BrokerID]
		brokerInfos[index].Config = broker.Configs
	}

	sort.Slice(
		brokerInfos, func(a, b int) bool {
			return brokerInfos[a].ID < brokerInfos[b].ID
		},
	)
	return brokerInfos, nil
}

func (c *BrokerAdminClient) GetBrokerIDs(ctx context.Context) ([]int, error) {
	resp, err := c.client.Metadata(
		ctx, &kafka.MetadataRequest{
			Topics: []string{},
		},
	)
	if err != nil {
		return nil, err
	}

	brokerIDs := []int{}
	for _, broker := range resp.Brokers {
		brokerIDs = append(brokerIDs, broker.ID)
	}
	sort.Ints(brokerIDs)
	return brokerIDs, nil
}

func (c *BrokerAdminClient) GetTopics(
	ctx context.Context,
	names []string,
) ([]TopicInfo, error) {
	var topicNames []string
	if len(names) > 0 {
		topicNames = names
	}

	metadataResp, err := c.client.Metadata(
		ctx,
		&kafka.MetadataRequest{
			Topics: topicNames,
		},
	)
	if err != nil {
		return nil, err
	}

	topicInfos := []TopicInfo{}
	allTopicNames := []string{}
	topicNameToIndex := map[string]int{}

	for _, topic := range metadataResp.Topics {
		if topic.Error != nil {
			log.Debugf("Skipping topic %s: %v", topic.Name, topic.Error)
			continue
		}

		partitionInfos := []PartitionInfo{}
		for _, partition := range topic.Partitions {
			partitionInfos = append(
				partitionInfos,
				PartitionInfo{
					Topic:    topic.Name,
					ID:       partition.ID,
					Leader:   partition.Leader.ID,
					Replicas: metadataBrokerIDs(partition.Replicas),
					ISR:      metadataBrokerIDs(partition.Isr),
				},
			)
		}

		topicNameToIndex[topic.Name] = len(topicInfos)
		topicInfos = append(
			topicInfos,
			TopicInfo{
				Name:       topic.Name,
				Partitions: partitionInfos,
			},
		)
		allTopicNames = append(allTopicNames, topic.Name)
	}

	if len(allTopicNames) > 0 {
		configsResp, err := c.client.DescribeConfigs(
			ctx,
			kafka.DescribeConfigsRequest{
				Topics: allTopicNames,
			},
		)
		if err != nil {
			return nil, err
		}

		for _, topic := range configsResp.Topics {
			index := topicNameToIndex[topic.Topic]
			topicInfos[index].Config = topic.Configs
		}
	}

	return topicInfos, nil
}

func (c *BrokerAdminClient) DescribeAssignments(
	ctx context.Context,
	topics []string,
) (map[assign.PartitionKey][]int, error) {
	metadataResp, err := c.client.Metadata(
		ctx,
		&kafka.MetadataRequest{
			Topics: topics,
		},
	)
	if err != nil {
		return nil, err
	}

	assignments := map[assign.PartitionKey][]int{}

	for _, topic := range metadataResp.Topics {
		if topic.Error != nil {
			// Unknown topics are omitted; their rejection surfaces
			// at submission time instead.
			log.Debugf(
				"No current assignment for topic %s: %v",
				topic.Name,
				topic.Error,
			)
			continue
		}

		for _, partition := range topic.Partitions {
			key := assign.PartitionKey{
				Topic:     topic.Name,
				Partition: partition.ID,
			}
			assignments[key] = metadataBrokerIDs(partition.Replicas)
		}
	}

	return assignments, nil
}

func (c *BrokerAdminClient) ListActiveReassignments(ctx context.Context) (
	[]ActiveReassignment,
	error,
) {
	resp, err := c.client.ListPartitionReassignments(
		ctx,
		&kafka.ListPartitionReassignmentsRequest{},
	)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	reassignments := []ActiveReassignment{}

	for topicName, topic := range resp.Topics {
		for _, partition := range topic.Partitions {
			reassignments = append(
				reassignments,
				ActiveReassignment{
					Key: assign.PartitionKey{
						Topic:     topicName,
						Partition: partition.PartitionIndex,
					},
					Replicas:         partition.Replicas,
					AddingReplicas:   partition.AddingReplicas,
					RemovingReplicas: partition.RemovingReplicas,
				},
			)
		}
	}

	SortReassignments(reassignments)
	return reassignments, nil
}

func (c *BrokerAdminClient) SubmitReassignment(
	ctx context.Context,
	target assign.ReplicaAssignment,
) (map[assign.PartitionKey]error, error) {
	if c.readOnly {
		return nil, errors.New("cannot submit reassignment in read-only mode")
	}

	rejections := map[assign.PartitionKey]error{}

	// The API takes one topic per request; every topic is attempted even
	// if an earlier one fails.
	for _, topic := range target.Topics() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		requestAssignments := []kafka.AlterPartitionReassignmentsRequestAssignment{}
		topicKeys := []assign.PartitionKey{}

		for _, key := range target.Keys() {
			if key.Topic != topic {
				continue
			}
			topicKeys = append(topicKeys, key)
			requestAssignments = append(
				requestAssignments,
				kafka.AlterPartitionReassignmentsRequestAssignment{
					PartitionID: key.Partition,
					BrokerIDs:   target[key],
				},
			)
		}

		resp, err := c.client.AlterPartitionReassignments(
			ctx,
			&kafka.AlterPartitionReassignmentsRequest{
				Topic:       topic,
				Assignments: requestAssignments,
			},
		)
		if err == nil && resp.Error != nil {
			err = resp.Error
		}
		if err != nil {
			for _, key := range topicKeys {
				rejections[key] = err
			}
			continue
		}

		for _, result := range resp.PartitionResults {
			if result.Error != nil {
				key := assign.PartitionKey{
					Topic:     topic,
					Partition: result.PartitionID,
				}
				rejections[key] = result.Error
			}
		}
	}

	return rejections, nil
}

func (c *BrokerAdminClient) PollReassignments(
	ctx context.Context,
	keys []assign.PartitionKey,
) ([]assign.PartitionKey, error) {
	requestTopics := map[string]kafka.ListPartitionReassignmentsRequestTopic{}
	for _, key := range keys {
		topic := requestTopics[key.Topic]
		topic.PartitionIndexes = append(topic.PartitionIndexes, key.Partition)
		requestTopics[key.Topic] = topic
	}

	resp, err := c.client.ListPartitionReassignments(
		ctx,
		&kafka.ListPartitionReassignmentsRequest{
			Topics: requestTopics,
		},
	)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	requested := map[assign.PartitionKey]struct{}{}
	for _, key := range keys {
		requested[key] = struct{}{}
	}

	remaining := []assign.PartitionKey{}
	for topicName, topic := range resp.Topics {
		for _, partition := range topic.Partitions {
			key := assign.PartitionKey{
				Topic:     topicName,
				Partition: partition.PartitionIndex,
			}
			if _, ok := requested[key]; ok {
				remaining = append(remaining, key)
			}
		}
	}

	assign.SortKeys(remaining)
	return remaining, nil
}

func (c *BrokerAdminClient) UpdateTopicConfig(
	ctx context.Context,
	name string,
	configEntries []kafka.ConfigEntry,
) ([]string, error) {
	if c.readOnly {
		return nil, errors.New("cannot update topic config in read-only mode")
	}

	_, err := c.client.AlterTopicConfigs(
		ctx,
		kafka.AlterTopicConfigsRequest{
			Topic:         name,
			ConfigEntries: configEntries,
		},
	)
	if err != nil {
		return nil, err
	}

	updated := []string{}
	for _, entry := range configEntries {
		updated = append(updated, entry.ConfigName)
	}
	return updated, nil
}

func (c *BrokerAdminClient) UpdateBrokerConfig(
	ctx context.Context,
	id int,
	configEntries []kafka.ConfigEntry,
) ([]string, error) {
	if c.readOnly {
		return nil, errors.New("cannot update broker config in read-only mode")
	}

	_, err := c.client.AlterBrokerConfigs(
		ctx,
		kafka.AlterBrokerConfigsRequest{
			BrokerID:      id,
			ConfigEntries: configEntries,
		},
	)
	if err != nil {
		return nil, err
	}

	updated := []string{}
	for _, entry := range configEntries {
		updated = append(updated, entry.ConfigName)
	}
	return updated, nil
}

func (c *BrokerAdminClient) Close() error {
	return nil
}

func metadataBrokerIDs(brokers []kafka.Broker) []int {
	ids := []int{}
	for _, broker := range brokers {
		ids = append(ids, broker.ID)
	}
	return ids
}
