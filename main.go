package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/grpcserver"
	"messenger-service/internal/handlers"
	"messenger-service/internal/logger"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/services"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

type stores struct {
	users         repositories.UserRepository
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	reactions     repositories.ReactionRepository
	database      *sqlx.DB
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.ServiceName)
	log := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Info("event publisher ready", "mode", rabbitmq.PublisherMode(publisher), "noop_reason", rabbitmq.PublisherNoopReason(publisher))
	emitter := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Environment)

	st, err := openStores(cfg)
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	if st.database != nil {
		defer st.database.Close()
	}

	hub := ws.NewHub()
	userService := services.NewUserService(st.users)
	conversationService := services.NewConversationService(st.users, st.conversations, hub)
	messageService := services.NewMessageService(st.conversations, st.messages, userService, hub)
	reactionService := services.NewReactionService(st.conversations, st.messages, st.reactions, hub)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	issuer := auth.NewIssuer(cfg.JWTSecret, 24*time.Hour)
	wsHandler := ws.NewHandler(hub, conversationService, verifier)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		middleware.RequestID(),
		observability.HTTPMetricsMiddleware(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		if st.database != nil {
			if err := st.database.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": cfg.Storage})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, middleware.AuthMiddleware(verifier), handlers.Set{
		Users:         handlers.NewUserHandler(userService, emitter),
		Conversations: handlers.NewConversationHandler(conversationService, emitter),
		Messages:      handlers.NewMessageHandler(messageService, conversationService),
		Reactions:     handlers.NewReactionHandler(reactionService, messageService, conversationService),
	})
	router.GET("/ws/conversations/:conversation_id", wsHandler.HandleConversation)
	router.GET("/ws/users/me", wsHandler.HandleUser)
	handlers.RegisterDebugRoutes(router, emitter, issuer, cfg.DebugRoutes)

	grpcSrv := grpcserver.New(cfg.ServiceName)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Error("failed to listen for grpc", "port", cfg.GRPCPort, "error", err)
		os.Exit(1)
	}
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc server error", "error", err)
		}
	}()

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Info("http server listening", "port", cfg.Port, "storage", cfg.Storage)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	grpcSrv.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	grpcSrv.Stop()
}

func openStores(cfg *config.Config) (stores, error) {
	if cfg.UseMemoryStore() {
		store := repositories.NewMemoryStore()
		return stores{users: store, conversations: store, messages: store, reactions: store}, nil
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		return stores{}, err
	}
	return stores{
		users:         repositories.NewUserRepo(database),
		conversations: repositories.NewConversationRepo(database),
		messages:      repositories.NewMessageRepo(database),
		reactions:     repositories.NewReactionRepo(database),
		database:      database,
	}, nil
}
