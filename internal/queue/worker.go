package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// retryCountHeader tracks how many times a message has been requeued after a
// handler failure. It rides on the message itself so the count survives the
// republish.
const retryCountHeader = "x-retry-count"

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry feeds queue messages to handler. A failed message is
// republished to the tail of the queue with an incremented retry header
// until maxRetries, then nacked without requeue so dead-letter routing can
// pick it up. Blocks until the channel closes.
func (c *Client) ConsumeWithRetry(queueName string, handler HandlerFunc, maxRetries int, retryDelay time.Duration) error {
	msgs, err := c.ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for msg := range msgs {
		ctx := context.Background()
		if err := handler(ctx, msg.Body); err == nil {
			_ = msg.Ack(false)
			continue
		}

		attempts := retryCount(msg.Headers)
		if attempts >= maxRetries {
			_ = msg.Nack(false, false)
			continue
		}

		headers := msg.Headers
		if headers == nil {
			headers = amqp.Table{}
		}
		headers[retryCountHeader] = attempts + 1

		time.Sleep(retryDelay)
		_ = c.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
			Timestamp:   time.Now(),
		})
		_ = msg.Ack(false)
	}

	return errors.New("consumer closed")
}

// The AMQP client hands header integers back in whichever width the broker
// chose.
func retryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch t := headers[retryCountHeader].(type) {
	case int32:
		return int(t)
	case int64:
		return int(t)
	case int:
		return t
	}
	return 0
}
