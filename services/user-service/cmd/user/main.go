package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/db"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/user-service/internal/repository"
	"github.com/satyampathakk/BOOKADATE/services/user-service/internal/service"
	thttp "github.com/satyampathakk/BOOKADATE/services/user-service/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("user-service")
	defer shutdown(context.Background())

	repo := repository.NewUserRepo(db.Open(cfg.PGUserDSN))
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}

	svc := service.NewUserSvc(repo, time.Duration(cfg.JWTExpireMin)*time.Minute)

	r := gin.Default()
	thttp.NewHandler(svc, cfg.AdminEmail, cfg.AdminPassword).Register(r)

	log.Println("[user] listening on", cfg.UserHTTPAddr)
	log.Fatal(r.Run(cfg.UserHTTPAddr))
}
