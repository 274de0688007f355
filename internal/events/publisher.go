// Package events публикует события о созданных бронированиях в RabbitMQ.
// Публикация выполняется после фиксации бронирования и не влияет на
// результат запроса: ошибка публикации только логируется вызывающей стороной.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// Ключ маршрутизации событий бронирования.
const routingKeyBookingCreated = "booking.created"

// Publisher публикует события в заданный exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// New подключается к RabbitMQ и объявляет exchange типа topic.
func New(url, exchange string) (*Publisher, error) {
	const op = "events.New"
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// BookingCreated публикует событие о созданном бронировании.
func (p *Publisher) BookingCreated(event models.BookingEvent) error {
	const op = "events.BookingCreated"
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = p.ch.Publish(
		p.exchange,
		routingKeyBookingCreated,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
