package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/db"
	"github.com/satyampathakk/BOOKADATE/pkg/mq"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/booking-service/internal/repository"
	"github.com/satyampathakk/BOOKADATE/services/booking-service/internal/service"
	thttp "github.com/satyampathakk/BOOKADATE/services/booking-service/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("booking-service")
	defer shutdown(context.Background())

	repo := repository.NewBookingRepo(db.Open(cfg.PGBookingDSN))
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}

	pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
	if err != nil {
		log.Fatal(err)
	}
	defer pub.Close()

	svc := service.NewBookingSvc(repo, pub)

	r := gin.Default()
	thttp.NewHandler(svc).Register(r)

	log.Println("[booking] listening on", cfg.BookingHTTPAddr)
	log.Fatal(r.Run(cfg.BookingHTTPAddr))
}
