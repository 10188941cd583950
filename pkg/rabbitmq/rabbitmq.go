package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"recipebox/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// RecipeEventsQueue is the durable queue recipe lifecycle events go to.
const RecipeEventsQueue = "recipe_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logrus.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the recipe
// events queue.
func NewClient(cfg Config, log *logrus.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", RecipeEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		RecipeEventsQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", RecipeEventsQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// EncodeRecipeEvent builds the persistent JSON message for an event.
func EncodeRecipeEvent(event models.RecipeEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal recipe event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.Type,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
	}, nil
}

// DecodeRecipeEvent parses a message produced by EncodeRecipeEvent.
func DecodeRecipeEvent(body []byte) (models.RecipeEvent, error) {
	var event models.RecipeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.RecipeEvent{}, fmt.Errorf("failed to decode recipe event: %w", err)
	}
	return event, nil
}

// PublishRecipeEvent publishes an event to the recipe events queue.
func (c *Client) PublishRecipeEvent(event models.RecipeEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	msg, err := EncodeRecipeEvent(event)
	if err != nil {
		return err
	}

	if err := c.channel.Publish(
		"",                // exchange: default exchange
		RecipeEventsQueue, // routing key: the queue name
		false,             // mandatory
		false,             // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.WithFields(logrus.Fields{"type": event.Type, "recipe_id": event.RecipeID}).Debug("recipe event published")
	return nil
}

// ConsumeRecipeEvents delivers recipe events to handler in a goroutine.
// Messages are acked when handler returns nil and requeued otherwise;
// undecodable messages are rejected without requeue. The returned channel
// is closed once the broker stops delivering, e.g. on connection loss.
func (c *Client) ConsumeRecipeEvents(handler func(event models.RecipeEvent) error) (<-chan struct{}, error) {
	if c.channel == nil {
		return nil, fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel)
	if err != nil {
		return nil, err
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		handleDeliveries(c.log, msgs, handler)
		c.log.WithField("queue", queue.Name).Warn("recipe event delivery stopped, broker closed the channel")
	}()

	return done, nil
}

// handleDeliveries processes deliveries until msgs is closed.
func handleDeliveries(log *logrus.Logger, msgs <-chan amqp.Delivery, handler func(event models.RecipeEvent) error) {
	for msg := range msgs {
		event, err := DecodeRecipeEvent(msg.Body)
		if err != nil {
			log.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("dropping malformed recipe event")
			if rejectErr := msg.Reject(false); rejectErr != nil {
				log.WithError(rejectErr).Warn("failed to reject message")
			}
			continue
		}

		if err := handler(event); err != nil {
			log.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("recipe event handler failed, requeueing")
			if nackErr := msg.Nack(false, true); nackErr != nil {
				log.WithError(nackErr).Warn("failed to nack message")
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			log.WithError(ackErr).Warn("failed to ack message")
		}
	}
}
