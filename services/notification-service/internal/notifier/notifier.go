package notifier

import "log"

// Notifier abstracts the delivery channel (console now, email/push later).
type Notifier interface {
	Notify(userID, subject, message string) error
}

// ConsoleNotifier logs notifications; stands in until a real channel is
// wired up.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(userID, subject, message string) error {
	log.Printf("[notify] to=%s %s :: %s", userID, subject, message)
	return nil
}
