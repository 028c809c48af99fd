package throttle

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/reassignctl/reassignctl/pkg/admin"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// ApplyError indicates that a throttle config update was rejected by the
// cluster. Exactly one of Broker (>= 0) or Topic is set, depending on
// which config the update targeted.
type ApplyError struct {
	Broker int
	Topic  string
	Cause  error
}

func (e *ApplyError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf(
			"throttle apply failed for topic %s: %v",
			e.Topic,
			e.Cause,
		)
	}
	return fmt.Sprintf(
		"throttle apply failed for broker %d: %v",
		e.Broker,
		e.Cause,
	)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}

// configUpdater is the subset of the admin client needed to apply
// throttle configs.
type configUpdater interface {
	UpdateBrokerConfig(
		ctx context.Context,
		id int,
		configEntries []kafka.ConfigEntry,
	) ([]string, error)
	UpdateTopicConfig(
		ctx context.Context,
		name string,
		configEntries []kafka.ConfigEntry,
	) ([]string, error)
}

// Controller applies and removes throttle specs through the cluster
// control plane.
type Controller struct {
	client configUpdater
}

// NewController creates and returns a new Controller instance.
func NewController(client configUpdater) *Controller {
	return &Controller{client: client}
}

// Apply issues one config update per throttled broker and one per
// throttled topic. Rejected updates are collected rather than aborting:
// reassignment correctness does not depend on throttling, only
// performance does. The returned error, if any, wraps one ApplyError
// per rejected update.
func (c *Controller) Apply(ctx context.Context, spec Spec) error {
	var err error

	for _, brokerID := range spec.BrokerIDs() {
		throttle := spec.Brokers[brokerID]
		log.Infof(
			"Applying throttle to broker %d (topics: %v)",
			brokerID,
			spec.Topics[brokerID],
		)

		_, brokerErr := c.client.UpdateBrokerConfig(
			ctx,
			brokerID,
			throttle.ConfigEntries(),
		)
		if brokerErr != nil {
			err = multierror.Append(err, &ApplyError{
				Broker: brokerID,
				Cause:  brokerErr,
			})
		}
	}

	for _, topic := range spec.TopicNames() {
		log.Infof("Applying replica throttles to topic %s", topic)

		_, topicErr := c.client.UpdateTopicConfig(
			ctx,
			topic,
			[]kafka.ConfigEntry{
				{
					ConfigName:  admin.LeaderReplicasThrottledKey,
					ConfigValue: "*",
				},
				{
					ConfigName:  admin.FollowerReplicasThrottledKey,
					ConfigValue: "*",
				},
			},
		)
		if topicErr != nil {
			err = multierror.Append(err, &ApplyError{
				Broker: -1,
				Topic:  topic,
				Cause:  topicErr,
			})
		}
	}

	return err
}

// Remove clears the throttle configs previously applied for the argument
// spec. Failures are collected and returned but are not fatal to the
// caller; a leftover throttle only affects performance.
func (c *Controller) Remove(ctx context.Context, spec Spec) error {
	var err error

	for _, brokerID := range spec.BrokerIDs() {
		log.Infof("Removing throttle from broker %d", brokerID)

		_, brokerErr := c.client.UpdateBrokerConfig(
			ctx,
			brokerID,
			[]kafka.ConfigEntry{
				{
					ConfigName:  admin.LeaderThrottledKey,
					ConfigValue: "",
				},
				{
					ConfigName:  admin.FollowerThrottledKey,
					ConfigValue: "",
				},
				{
					ConfigName:  admin.LogDirThrottledKey,
					ConfigValue: "",
				},
			},
		)
		if brokerErr != nil {
			err = multierror.Append(err, &ApplyError{
				Broker: brokerID,
				Cause:  brokerErr,
			})
		}
	}

	for _, topic := range spec.TopicNames() {
		log.Infof("Removing replica throttles from topic %s", topic)

		_, topicErr := c.client.UpdateTopicConfig(
			ctx,
			topic,
			[]kafka.ConfigEntry{
				{
					ConfigName:  admin.LeaderReplicasThrottledKey,
					ConfigValue: "",
				},
				{
					ConfigName:  admin.FollowerReplicasThrottledKey,
					ConfigValue: "",
				},
			},
		)
		if topicErr != nil {
			err = multierror.Append(err, &ApplyError{
				Broker: -1,
				Topic:  topic,
				Cause:  topicErr,
			})
		}
	}

	return err
}
