package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"fanhub/internal/config"
	"fanhub/internal/db"
	"fanhub/internal/handlers"
	"fanhub/internal/middleware"
	"fanhub/internal/observability"
	"fanhub/internal/payments"
	"fanhub/internal/rabbitmq"
	"fanhub/internal/repositories"
	"fanhub/internal/services"
	"fanhub/internal/telemetry"
	"fanhub/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, "fanhub")
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	mongoDB, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode: %s", rabbitmq.PublisherMode(publisher))

	auditEmitter := telemetry.NewAuditEmitter(publisher, "audit.fanhub", "fanhub", cfg.Environment)

	mediaService, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("failed to init cloudinary: %v", err)
	}

	profileRepo := repositories.NewProfileRepo(database)
	threadRepo := repositories.NewThreadRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	postRepo := repositories.NewPostRepo(database)
	subscriptionRepo := repositories.NewSubscriptionRepo(database)
	billingRepo := repositories.NewBillingRepo(database)

	sessionService := services.NewSessionService(redisClient)
	viewService := services.NewViewService(mongoDB)
	statsService := services.NewStatsService(profileRepo, billingRepo, redisClient)
	stripeClient := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.FrontendURL)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(profileRepo, sessionService)
	profileHandler := handlers.NewProfileHandler(profileRepo, viewService)
	threadHandler := handlers.NewThreadHandler(threadRepo, messageRepo, profileRepo, postRepo, hub)
	messageHandler := handlers.NewMessageHandler(threadRepo, messageRepo, profileRepo, postRepo, subscriptionRepo, mediaService, hub, auditEmitter)
	postHandler := handlers.NewPostHandler(postRepo, mediaService, viewService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionRepo, profileRepo, postRepo, stripeClient)
	webhookHandler := handlers.NewWebhookHandler(subscriptionRepo, billingRepo, stripeClient, auditEmitter)
	statsHandler := handlers.NewStatsHandler(statsService)

	threadWS := ws.NewThreadWebSocketHandler(hub, threadRepo, sessionService)
	inboxWS := ws.NewInboxWebSocketHandler(hub, sessionService)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("fanhub"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(sessionService)

	router.POST("/auth/signup", authHandler.Signup)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)

	router.GET("/profile", authMiddleware, profileHandler.Me)
	router.POST("/profile/creator", authMiddleware, profileHandler.UpdateCreatorSettings)
	router.GET("/profile/views", authMiddleware, profileHandler.CreatorViews)
	router.GET("/profiles", authMiddleware, profileHandler.Search)

	router.GET("/threads", authMiddleware, threadHandler.ListThreads)
	router.GET("/threads/:thread_id/messages", authMiddleware, threadHandler.GetThreadMessages)
	router.POST("/threads/:thread_id/read", authMiddleware, threadHandler.MarkThreadRead)
	router.GET("/inbox/unread_count", authMiddleware, threadHandler.UnreadCount)

	router.POST("/messages", authMiddleware, messageHandler.SendDirect)
	router.POST("/messages/mass", authMiddleware, messageHandler.SendMass)
	router.POST("/messages/:message_id/read", authMiddleware, messageHandler.MarkMessageRead)
	router.GET("/messages/:message_id/recipients", authMiddleware, messageHandler.ListMassRecipients)

	router.POST("/posts", authMiddleware, postHandler.CreatePost)
	router.GET("/posts", postHandler.ListPosts)
	router.POST("/views", authMiddleware, postHandler.RecordView)

	router.POST("/subscriptions/checkout", authMiddleware, subscriptionHandler.CreateSubscriptionCheckout)
	router.POST("/posts/:post_id/checkout", authMiddleware, subscriptionHandler.CreatePostCheckout)
	router.GET("/subscriptions", authMiddleware, subscriptionHandler.ListSubscriptions)
	router.POST("/subscriptions/cancel", authMiddleware, subscriptionHandler.CancelSubscription)
	router.POST("/stripe/webhook", webhookHandler.HandleStripeWebhook)

	router.GET("/stats", statsHandler.PlatformStats)

	router.GET("/ws/threads/:thread_id", threadWS.Handle)
	router.GET("/ws/inbox", inboxWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
