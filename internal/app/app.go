package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lastochka/messenger/internal/bus"
	"lastochka/messenger/internal/config"
	"lastochka/messenger/internal/handler"
	"lastochka/messenger/internal/pkg/auth"
	"lastochka/messenger/internal/pkg/logger"
	"lastochka/messenger/internal/repository"
	"lastochka/messenger/internal/service"
	"lastochka/messenger/internal/sse"
)

// Run собирает процесс целиком: конфиг, БД, redis, шину, сервисы,
// обработчики и HTTP-сервер. Блокируется до фатальной ошибки сервера.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogProduction); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.L

	db, err := repository.NewDB(cfg.DSN())
	if err != nil {
		return err
	}

	rdb, err := bus.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	publisher := bus.NewPublisher(rdb)
	queue := repository.NewStreamRepository(rdb)

	// Единственный на процесс подписчик шины.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber := bus.NewSubscriber(rdb, queue, log, cfg.WorkerCount)
	go func() {
		if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bus subscriber stopped", zap.Error(err))
		}
	}()

	var storage service.FileStorage
	if cfg.S3Enabled() {
		storage, err = service.NewS3Storage(cfg, log)
		if err != nil {
			return err
		}
	} else {
		log.Info("s3 is not configured, uploads disabled")
	}

	var summarizer service.Summarizer
	if cfg.SummarizerEnabled {
		summarizer = service.NewDigestSummarizer()
	}

	tokens := auth.NewTokenManager(cfg.JWTKey)

	userService := service.NewUserService(db, log)
	chatService := service.NewChatService(db, publisher, log)
	messageService := service.NewMessageService(db, publisher, log)
	draftService := service.NewDraftService(db)
	reactionService := service.NewReactionService(db, publisher, log)
	readStatusService := service.NewReadStatusService(db, publisher, log)
	blackListService := service.NewBlackListService(db)
	summarizeService := service.NewSummarizeService(db, publisher, log, summarizer)

	emitter := sse.NewEmitter(queue, log)

	server := NewServer(
		handler.NewAuthMiddleware(tokens, userService, log),
		handler.NewUserHandler(userService, tokens),
		handler.NewChatHandler(chatService, storage),
		handler.NewMessageHandler(messageService),
		handler.NewDraftHandler(draftService),
		handler.NewReactionHandler(reactionService),
		handler.NewReadStatusHandler(readStatusService),
		handler.NewBlackListHandler(blackListService),
		handler.NewEventsHandler(chatService, summarizeService, emitter),
	)

	return server.Run(cfg.ServerHost, cfg.ServerPort)
}
