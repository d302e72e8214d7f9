package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/db"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/venue-service/internal/repository"
	thttp "github.com/satyampathakk/BOOKADATE/services/venue-service/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("venue-service")
	defer shutdown(context.Background())

	repo := repository.NewVenueRepo(db.Open(cfg.PGVenueDSN))
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}

	r := gin.Default()
	thttp.NewHandler(repo).Register(r)

	log.Println("[venue] listening on", cfg.VenueHTTPAddr)
	log.Fatal(r.Run(cfg.VenueHTTPAddr))
}
