package worker

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/satyampathakk/BOOKADATE/services/notification-service/internal/events"
	"github.com/satyampathakk/BOOKADATE/services/notification-service/internal/notifier"
)

// Source yields broker deliveries; satisfied by pkg/mq.Consumer.
type Source interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

// Worker turns match and booking events into notifications for both
// parties.
type Worker struct {
	src Source
	n   notifier.Notifier
}

func New(src Source, n notifier.Notifier) *Worker {
	return &Worker{src: src, n: n}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.src.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.Handle(d.RoutingKey, d.Body); err != nil {
				log.Printf("[notify] handle key=%s err=%v, requeueing", d.RoutingKey, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle dispatches one event. Unknown keys are accepted and dropped so a
// new producer cannot wedge the queue.
func (w *Worker) Handle(key string, body []byte) error {
	switch key {
	case events.RKMatchMatched:
		ev, err := events.Unmarshal[events.MatchMatched](body)
		if err != nil {
			return err
		}
		return w.both(ev.User1ID, ev.User2ID, "It's a match!",
			fmt.Sprintf("You have a new match (%s). Set up your date!", ev.MatchID))

	case events.RKBookingConfirmed:
		ev, err := events.Unmarshal[events.BookingEvent](body)
		if err != nil {
			return err
		}
		return w.both(ev.User1ID, ev.User2ID, "Date confirmed",
			fmt.Sprintf("Booking %s is confirmed. See you there!", ev.BookingID))

	case events.RKBookingCancelled:
		ev, err := events.Unmarshal[events.BookingEvent](body)
		if err != nil {
			return err
		}
		return w.both(ev.User1ID, ev.User2ID, "Date cancelled",
			fmt.Sprintf("Booking %s was cancelled.", ev.BookingID))

	case events.RKBookingCompleted:
		ev, err := events.Unmarshal[events.BookingEvent](body)
		if err != nil {
			return err
		}
		return w.both(ev.User1ID, ev.User2ID, "How was your date?",
			fmt.Sprintf("Booking %s is complete. Leave your feedback!", ev.BookingID))

	default:
		log.Printf("[notify] skip unknown key=%s", key)
		return nil
	}
}

func (w *Worker) both(user1ID, user2ID, subject, message string) error {
	if err := w.n.Notify(user1ID, subject, message); err != nil {
		return err
	}
	return w.n.Notify(user2ID, subject, message)
}
