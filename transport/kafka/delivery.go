package kafka

import (
	"context"
	"strconv"

	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

// Header keys added to received page views when the message came from Kafka.
const (
	PartitionHeader = "kafka_partition"
	OffsetHeader    = "kafka_offset"
	TimestampHeader = "kafka_timestamp"
)

// DeliveryHeaders extracts the partition, offset and timestamp the Kafka
// subscriber stores on the message context. Messages from other transports
// yield an empty map.
func DeliveryHeaders(ctx context.Context) map[string]string {
	headers := make(map[string]string, 3)
	if partition, ok := kafka.MessagePartitionFromCtx(ctx); ok {
		headers[PartitionHeader] = strconv.FormatInt(int64(partition), 10)
	}
	if offset, ok := kafka.MessagePartitionOffsetFromCtx(ctx); ok {
		headers[OffsetHeader] = strconv.FormatInt(offset, 10)
	}
	if ts, ok := kafka.MessageTimestampFromCtx(ctx); ok {
		headers[TimestampHeader] = strconv.FormatInt(ts.UnixMilli(), 10)
	}
	return headers
}
