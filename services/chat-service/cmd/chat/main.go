package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
	"github.com/satyampathakk/BOOKADATE/pkg/obs"
	"github.com/satyampathakk/BOOKADATE/services/chat-service/internal/session"
	thttp "github.com/satyampathakk/BOOKADATE/services/chat-service/internal/transport/http"
	"github.com/satyampathakk/BOOKADATE/services/chat-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("chat-service")
	defer shutdown(context.Background())

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	reg := session.NewRegistry()
	hub := ws.NewHub()

	// the sweeper pushes status changes out to connected clients
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.Run(ctx, 30*time.Second, func(tr session.Transition) {
		switch tr.Status {
		case session.StatusActive:
			hub.Broadcast(tr.SessionID, map[string]string{
				"type":    "session_active",
				"message": "Chat session is now active",
			})
		case session.StatusExpired:
			hub.Broadcast(tr.SessionID, map[string]string{
				"type":    "session_expired",
				"message": "Chat session has expired",
			})
			hub.CloseSession(tr.SessionID)
		}
	})

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	thttp.NewHandler(reg, hub, logger).Register(r)

	logger.WithField("addr", cfg.ChatHTTPAddr).Info("chat service listening")
	log.Fatal(r.Run(cfg.ChatHTTPAddr))
}
