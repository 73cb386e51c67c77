package queue

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/cache"
)

// DriverFromConfig builds the driver named by QUEUE_DRIVER. The redis driver
// reuses the pkg/cache client, so cache.Connect must have succeeded.
func DriverFromConfig() (Driver, error) {
	switch name := config.QueueDriver(); name {
	case "", "memory":
		return NewMemoryDriver(), nil
	case "redis":
		if !cache.Enabled() {
			return nil, errors.New("queue: QUEUE_DRIVER=redis but redis is not connected")
		}
		return NewRedisDriver(cache.RDB), nil
	case "amqp":
		return NewAMQPDriver(config.AMQPURL(), config.AMQPQueue())
	default:
		return nil, fmt.Errorf("queue: unsupported QUEUE_DRIVER %q (supported: memory, redis, amqp)", name)
	}
}
