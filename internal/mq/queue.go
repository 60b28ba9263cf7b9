package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// declareQueue declares the non-durable check-in queue on ch.
func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}
