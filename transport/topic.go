package transport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

// Upper bounds of the broker protocol: partitions travel as int32 and the
// replication factor as int16.
const (
	MaxPartitions        = math.MaxInt32
	MaxReplicationFactor = math.MaxInt16
)

// TopicSpec describes a topic to be declared on the broker.
type TopicSpec struct {
	Name              string
	Partitions        int
	ReplicationFactor int
}

// Validate enforces a non-empty name and partition and replica counts within
// [1, MaxPartitions] and [1, MaxReplicationFactor].
func (s TopicSpec) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("topic name is required"))
	}
	switch {
	case s.Partitions < 1:
		errs = append(errs, fmt.Errorf("topic %q: partitions must be at least 1, got %d", s.Name, s.Partitions))
	case s.Partitions > MaxPartitions:
		errs = append(errs, fmt.Errorf("topic %q: partitions must be at most %d, got %d", s.Name, MaxPartitions, s.Partitions))
	}
	switch {
	case s.ReplicationFactor < 1:
		errs = append(errs, fmt.Errorf("topic %q: replication factor must be at least 1, got %d", s.Name, s.ReplicationFactor))
	case s.ReplicationFactor > MaxReplicationFactor:
		errs = append(errs, fmt.Errorf("topic %q: replication factor must be at most %d, got %d", s.Name, MaxReplicationFactor, s.ReplicationFactor))
	}
	return errors.Join(errs...)
}

// TopicProvisioner declares topics ahead of publishing. Declaring a topic
// that already exists succeeds and leaves the existing topic untouched.
type TopicProvisioner interface {
	Declare(ctx context.Context, spec TopicSpec) error
}

// MemoryProvisioner records declarations for brokers that create topics
// implicitly. The first declaration of a topic wins.
type MemoryProvisioner struct {
	mu     sync.Mutex
	topics map[string]TopicSpec
}

// NewMemoryProvisioner returns an empty MemoryProvisioner.
func NewMemoryProvisioner() *MemoryProvisioner {
	return &MemoryProvisioner{topics: make(map[string]TopicSpec)}
}

// Declare implements TopicProvisioner.
func (p *MemoryProvisioner) Declare(ctx context.Context, spec TopicSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.topics[spec.Name]; !ok {
		p.topics[spec.Name] = spec
	}
	return nil
}

// Declared returns the spec recorded for the topic.
func (p *MemoryProvisioner) Declared(name string) (TopicSpec, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	spec, ok := p.topics[name]
	return spec, ok
}
