package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPDriver publishes jobs to a durable RabbitMQ queue and consumes them
// with manual acks. A job is acked once it has been handed to a worker;
// retries happen in-process, so a crash mid-job loses that job.
type AMQPDriver struct {
	conn  *amqp.Connection
	queue string

	pubMu sync.Mutex
	pub   *amqp.Channel

	subOnce sync.Once
	subErr  error
	sub     *amqp.Channel
	msgs    <-chan amqp.Delivery
}

// NewAMQPDriver dials url and declares queue.
func NewAMQPDriver(url, queue string) (*AMQPDriver, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue/amqp: dial: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue/amqp: channel: %w", err)
	}

	if _, err := pub.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue/amqp: declare %s: %w", queue, err)
	}

	return &AMQPDriver{conn: conn, queue: queue, pub: pub}, nil
}

func (d *AMQPDriver) Push(ctx context.Context, payload []byte) error {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	err := d.pub.PublishWithContext(ctx, "", d.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("queue/amqp: publish: %w", err)
	}
	return nil
}

// Pop waits for the next delivery. The consumer channel is opened on the
// first call, so producers never register as consumers.
func (d *AMQPDriver) Pop(ctx context.Context) ([]byte, error) {
	d.subOnce.Do(d.subscribe)
	if d.subErr != nil {
		return nil, d.subErr
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-d.msgs:
		if !ok {
			return nil, errors.New("queue/amqp: delivery channel closed")
		}
		if err := msg.Ack(false); err != nil {
			return nil, fmt.Errorf("queue/amqp: ack: %w", err)
		}
		return msg.Body, nil
	}
}

func (d *AMQPDriver) subscribe() {
	ch, err := d.conn.Channel()
	if err != nil {
		d.subErr = fmt.Errorf("queue/amqp: channel: %w", err)
		return
	}
	if err := ch.Qos(10, 0, false); err != nil {
		d.subErr = fmt.Errorf("queue/amqp: qos: %w", err)
		return
	}
	msgs, err := ch.Consume(d.queue, "", false, false, false, false, nil)
	if err != nil {
		d.subErr = fmt.Errorf("queue/amqp: consume: %w", err)
		return
	}
	d.sub, d.msgs = ch, msgs
}

// Close closes the channels and the connection.
func (d *AMQPDriver) Close() error {
	if d.sub != nil {
		d.sub.Close()
	}
	d.pub.Close()
	return d.conn.Close()
}
