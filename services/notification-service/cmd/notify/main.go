package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/mq"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/notification-service/internal/notifier"
	"github.com/satyampathakk/BOOKADATE/services/notification-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("notification-service")
	defer shutdown(context.Background())

	cons, err := mq.NewConsumer(cfg.RabbitURL, "notification.q", map[string][]string{
		cfg.MatchExchange:   {"match.*"},
		cfg.BookingExchange: {"booking.*"},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.New(cons, notifier.NewConsole())
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Printf("[notify] run error: %v", err)
		}
	}()

	log.Println("[notify] consuming match.* and booking.* events")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
