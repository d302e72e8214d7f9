package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/db"
	"github.com/satyampathakk/BOOKADATE/pkg/mq"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/repository"
	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/service"
	thttp "github.com/satyampathakk/BOOKADATE/services/matching-service/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("matching-service")
	defer shutdown(context.Background())

	repo := repository.NewMatchRepo(db.Open(cfg.PGMatchDSN))
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}

	pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.MatchExchange)
	if err != nil {
		log.Fatal(err)
	}
	defer pub.Close()

	svc := service.NewMatchSvc(repo, pub)

	r := gin.Default()
	thttp.NewHandler(svc).Register(r)

	log.Println("[matching] listening on", cfg.MatchHTTPAddr)
	log.Fatal(r.Run(cfg.MatchHTTPAddr))
}
