// Package transports imports all built-in transports for auto-registration.
// Import this package to have every transport registered with the default registry.
package transports

import (
	_ "github.com/drblury/pageflow/transport/channel"
	_ "github.com/drblury/pageflow/transport/kafka"
	_ "github.com/drblury/pageflow/transport/nats"
	_ "github.com/drblury/pageflow/transport/rabbitmq"
)
