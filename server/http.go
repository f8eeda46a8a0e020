package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"meeting-backend/config"
	"meeting-backend/constant"
	apiHandler "meeting-backend/handler"
	"meeting-backend/pkg/janus"
	"meeting-backend/pkg/rabbitmq"
	"meeting-backend/repository"
	"meeting-backend/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewRabbitMQConn")
	}

	publisher, err := rabbitmq.NewPublisher(conn, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewPublisher")
	}
	defer publisher.Close()

	media := janus.NewClient(cfg.VideoServer.URL, cfg.VideoServer.RequestTimeout)
	defer media.Close()

	repos := repository.NewRepositories(cfg.DB)
	sessions := service.NewSessionManager(media, repos.VideoServer)
	handles := service.NewHandleManager(media)
	rooms := service.NewRoomOrchestrator(media, sessions, handles, repos.VideoServer, cfg.VideoServer.ServerID)
	participants := service.NewParticipantService(media, rooms, handles, repos.Meetings, repos.Participants, repos.VideoServer, publisher)
	waiting := service.NewWaitingService(repos.Meetings, repos.Waiting, participants, publisher)
	participants.SetAdmissionGate(waiting)
	manifests := service.NewMinioManifestStore(cfg.Storage, cfg.MinIOBucket)
	recordings := service.NewRecordingService(media, repos.Meetings, repos.Recordings, repos.VideoServer, participants, publisher, publisher, manifests, cfg.VideoServer.ServerID)
	meetings := service.NewMeetingService(repos.Meetings, repos.Participants, repos.VideoServer, rooms, waiting, recordings, publisher)

	serviceDeps := apiHandler.ServiceDependencies{
		RecordingService: recordings,
	}

	// Consume completion messages from the post-processing worker
	readyConsumer := rabbitmq.NewRecordingReadyConsumer(conn, cfg.Queue, cfg.Server.Workers, apiHandler.RecordingReadyHandler)
	go func() {
		err := readyConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Recording ready consumer error")
		}
	}()

	// Keep media-server sessions alive while the process runs
	go func() {
		ticker := time.NewTicker(cfg.VideoServer.KeepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.KeepAliveAll(ctx)
			}
		}
	}()

	r := gin.Default()
	addHealth(r)
	apiHandler.NewHTTPHandler(meetings, participants, waiting, recordings).Register(r)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
