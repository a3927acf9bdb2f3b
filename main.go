package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"KinderTube/config"
	"KinderTube/controllers"
	"KinderTube/jwt"
	"KinderTube/logger"
	"KinderTube/mail"
	"KinderTube/middlewares"
	"KinderTube/observability"
	"KinderTube/repositories/impl"
	"KinderTube/routes"
	"KinderTube/services"
	"KinderTube/storage"
	"KinderTube/validation"
	"KinderTube/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Stderr.WriteString("error loading .env file: " + err.Error() + "\n")
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := validation.Register(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}
	if err := config.InitDatabase(cfg, log); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	parentRepo := impl.NewParentRepository(config.DB)
	childRepo := impl.NewChildRepository(config.DB)
	videoRepo := impl.NewVideoRepository(config.DB)
	commentRepo := impl.NewCommentRepository(config.DB)

	var files storage.FileStore
	if cfg.StorageConfigured() {
		client, err := storage.NewClient(ctx, storage.Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to initialize object storage")
		}
		files = client
	} else {
		log.Warn("object storage is not configured, uploads and streaming are disabled")
	}

	// Уведомления: WebSocket всегда, FCM если есть ключ
	hub := websocket.NewHub(log)
	go hub.Run(ctx)
	notifier := &services.MultiNotifier{Notifiers: []services.Notifier{services.NewHubNotifier(hub)}, Log: log}

	fcm, err := config.InitMessaging(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize firebase messaging")
	}
	if fcm != nil {
		notifier.Notifiers = append(notifier.Notifiers, services.NewPushNotifier(fcm, parentRepo, log))
	}
	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize mailer")
	}
	if mailer != nil {
		notifier.Notifiers = append(notifier.Notifiers, services.NewEmailNotifier(mailer, parentRepo))
	}

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// Initialize services and set them in controllers
	controllers.SetLogger(log)
	controllers.SetAuthService(services.NewAuthService(parentRepo, childRepo, tokens, log))
	controllers.SetChildService(services.NewChildService(childRepo, log))
	controllers.SetRequestService(services.NewRequestService(childRepo, videoRepo, notifier, log))
	controllers.SetHistoryService(services.NewHistoryService(childRepo, videoRepo, log))
	controllers.SetParentService(services.NewParentService(parentRepo, childRepo, videoRepo))
	controllers.SetAdminService(services.NewAdminService(parentRepo, notifier, log))
	controllers.SetVideoService(services.NewVideoService(videoRepo, commentRepo, childRepo, files, log))
	controllers.SetWebSocketHub(hub, cfg.CORSOrigin)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.RequestLogger(log),
		middlewares.CORS(cfg.CORSOrigin),
		observability.Middleware(),
	)
	routes.RegisterRoutes(r, tokens, parentRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newMailer выбирает SES, затем SMTP; nil если почта не настроена
func newMailer(ctx context.Context, cfg *config.Config) (mail.Mailer, error) {
	if cfg.EmailFrom == "" {
		return nil, nil
	}
	if cfg.SESAccessKeyID != "" {
		return mail.NewSESMailer(ctx, mail.SESOptions{
			Endpoint:        cfg.SESEndpoint,
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			From:            cfg.EmailFrom,
		})
	}
	if cfg.SMTPHost != "" {
		return mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom), nil
	}
	return nil, nil
}
