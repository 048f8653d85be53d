package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/api"
	"github.com/replydesk/replydesk/internal/biz/usecase"
	"github.com/replydesk/replydesk/internal/conf"
	"github.com/replydesk/replydesk/internal/data"
	"github.com/replydesk/replydesk/internal/infra/openai"
	"github.com/replydesk/replydesk/internal/infra/telegram"
	"github.com/replydesk/replydesk/internal/service"
	"github.com/replydesk/replydesk/pkg/logger"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize infra clients
	tgClient, err := telegram.NewClient(cfg.Telegram.BotToken, zlog.Named("telegram"))
	if err != nil {
		zlog.Fatal("failed to create telegram client", zap.Error(err))
	}
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model,
		cfg.OpenAI.Timeout, cfg.OpenAI.MaxRetries, zlog.Named("openai"))

	// Initialize prompt store
	prompts, err := conf.NewPromptStore(cfg.PromptsPath)
	if err != nil {
		zlog.Fatal("failed to load prompts", zap.Error(err))
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.DBPath)
	if err != nil {
		zlog.Fatal("failed to create repositories", zap.Error(err))
	}
	defer repos.Close()
	zlog.Info("database ready", zap.String("path", cfg.DBPath))

	chatClient := data.NewTelegramRepo(tgClient)
	completion := data.NewCompletionRepo(openaiClient)

	// Initialize usecase layer
	generatorUC := usecase.NewGeneratorUsecase(repos.Suggestion, chatClient, completion, prompts, zlog.Named("generator"))
	decisionUC := usecase.NewDecisionUsecase(repos.Suggestion, chatClient, zlog.Named("decision"))
	chatsUC := usecase.NewChatsUsecase(repos.Chat, chatClient, zlog.Named("chats"))

	// Initialize service layer
	scheduler := service.NewScheduler(repos.Chat, repos.Settings, generatorUC, zlog.Named("scheduler"))

	// Initialize API server
	apiServer := api.NewServer(repos.Suggestion, repos.Settings, decisionUC, chatsUC,
		scheduler, prompts, zlog.Named("api"), cfg.APIPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tgClient.Start(ctx)
	scheduler.Start(ctx)

	// Seed the chat list from whatever the account can already see.
	if _, err := chatsUC.SyncDialogs(ctx); err != nil {
		zlog.Warn("initial dialog sync failed", zap.Error(err))
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			zlog.Error("api server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown: the in-flight tick drains its current chat.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		zlog.Warn("api shutdown error", zap.Error(err))
	}
}
