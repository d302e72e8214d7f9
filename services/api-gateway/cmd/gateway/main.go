package main

import (
	"context"
	"log"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/authn"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/pipeline"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/proxy"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/registry"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("api-gateway")
	defer shutdown(context.Background())

	logr := logrus.New()
	logr.SetFormatter(&logrus.JSONFormatter{})

	connect := time.Duration(cfg.ProxyConnectTimeoutSec) * time.Second
	overall := time.Duration(cfg.ProxyTimeoutSec) * time.Second
	prx := proxy.New(connect, overall)
	verifier := authn.NewHTTPVerifier(prx.Client(), cfg.UserSvcURL)

	p := pipeline.New(registry.FromConfig(cfg), routes.NewClassifier(), verifier, prx, logr)

	log.Println("[gateway] listening on", cfg.GatewayHTTPAddr)
	log.Fatal(p.Router().Run(cfg.GatewayHTTPAddr))
}
