package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/drblury/pageflow/transport"
)

// ClusterAdmin is the subset of sarama.ClusterAdmin used for provisioning.
type ClusterAdmin interface {
	CreateTopic(topic string, detail *sarama.TopicDetail, validateOnly bool) error
	Close() error
}

// AdminFactory allows overriding the cluster admin creation for testing.
var AdminFactory = func(brokers []string, conf *sarama.Config) (ClusterAdmin, error) {
	return sarama.NewClusterAdmin(brokers, conf)
}

// Provisioner creates topics through the Kafka admin API.
type Provisioner struct {
	brokers  []string
	clientID string
}

// NewProvisioner returns a Provisioner talking to the given brokers.
func NewProvisioner(brokers []string, clientID string) *Provisioner {
	return &Provisioner{brokers: brokers, clientID: clientID}
}

// Declare creates the topic. A topic that already exists is left as the
// broker has it and the call succeeds.
func (p *Provisioner) Declare(ctx context.Context, spec transport.TopicSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conf := sarama.NewConfig()
	if p.clientID != "" {
		conf.ClientID = p.clientID
	}
	admin, err := AdminFactory(p.brokers, conf)
	if err != nil {
		return fmt.Errorf("kafka: connecting cluster admin: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopic(spec.Name, &sarama.TopicDetail{
		NumPartitions:     int32(spec.Partitions),
		ReplicationFactor: int16(spec.ReplicationFactor),
	}, false)
	if err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
		return fmt.Errorf("kafka: creating topic %q: %w", spec.Name, err)
	}
	return nil
}
