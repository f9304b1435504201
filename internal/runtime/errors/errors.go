package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrServiceRequired      = sterrors.New("pageflow: service is required")
	ErrHandlerRequired      = sterrors.New("pageflow: handler function is required")
	ErrHandlerNameRequired  = sterrors.New("pageflow: handler name is required")
	ErrPublisherRequired    = sterrors.New("pageflow: publisher is required")
	ErrTopicRequired        = sterrors.New("pageflow: topic is required")
	ErrConfigRequired       = sterrors.New("pageflow: configuration is required")
	ErrLoggerRequired       = sterrors.New("pageflow: logger is required")
	ErrBindingNotFound      = sterrors.New("pageflow: output binding not found")
	ErrNoSubscriber         = sterrors.New("pageflow: channel has no subscriber")
	ErrAlreadySubscribed    = sterrors.New("pageflow: channel already has a subscriber")
	ErrUnknownPublisherKind = sterrors.New("pageflow: unknown publisher kind")
	ErrDuplicateHandler     = sterrors.New("pageflow: handler name already registered")
)

// PublishError reports that an event could not be handed to the broker.
type PublishError struct {
	Topic  string
	Source string
	Err    error
}

// NewPublishError wraps err with the destination and the publisher that failed.
// A nil err yields nil.
func NewPublishError(topic, source string, err error) error {
	if err == nil {
		return nil
	}
	var pubErr *PublishError
	if sterrors.As(err, &pubErr) {
		return err
	}
	return &PublishError{Topic: topic, Source: source, Err: err}
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("pageflow: publishing %s event to %q failed: %v", e.Source, e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// DeserializationError reports a consumed payload that is not a page view.
type DeserializationError struct {
	MessageUUID string
	Err         error
}

func NewDeserializationError(uuid string, err error) error {
	if err == nil {
		return nil
	}
	return &DeserializationError{MessageUUID: uuid, Err: err}
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("pageflow: cannot decode message %s: %v", e.MessageUUID, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// ProvisioningError reports that the broker rejected a topic declaration.
type ProvisioningError struct {
	Topic string
	Err   error
}

func NewProvisioningError(topic string, err error) error {
	if err == nil {
		return nil
	}
	return &ProvisioningError{Topic: topic, Err: err}
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("pageflow: provisioning topic %q failed: %v", e.Topic, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// ConfigValidationError marks errors produced while validating Config.
type ConfigValidationError struct {
	Err error
}

func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}

func (e ConfigValidationError) Error() string {
	return "pageflow: invalid configuration: " + e.Err.Error()
}

func (e ConfigValidationError) Unwrap() error { return e.Err }
