package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chat-agent/internal/agent/classifier"
	"chat-agent/internal/agent/router"
	"chat-agent/internal/agent/sqlagent"
	"chat-agent/internal/agent/sqltool"
	"chat-agent/internal/agent/websearch"
	"chat-agent/internal/agent/webtool"
	"chat-agent/internal/agent/workflow"
	"chat-agent/internal/common/aws"
	"chat-agent/internal/common/config"
	"chat-agent/internal/common/database"
	"chat-agent/internal/common/genai"
	"chat-agent/internal/common/logger"
	"chat-agent/internal/common/observability"
	"chat-agent/internal/common/search"
	"chat-agent/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting agent server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry (optional answer cache) ---
	var redisClient *database.RedisClient
	if cfg.Search.CacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Search provider ---
	var provider search.Provider
	switch cfg.Search.Provider {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		provider, err = search.NewElasticClient(esClient.Client, cfg.Search.Index)
		if err != nil {
			zapLog.Fatal("elasticsearch provider init failed", zap.Error(err))
		}
		zapLog.Info("Elasticsearch search provider initialized")
	default:
		provider = search.NewDuckDuckGoClient(cfg.Search.BaseURL, time.Duration(cfg.Search.Timeout)*time.Millisecond)
		zapLog.Info("DuckDuckGo search provider initialized")
	}

	generator := genai.NewClient(cfg.GenAI)

	// --- Optional AWS clients ---
	var sender workflow.ReplySender
	if cfg.AWS.ReplyEnabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.AWS.Region, cfg.AWS.SenderEmail)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		sender = sesClient
		zapLog.Info("SES reply delivery enabled", zap.String("sender", cfg.AWS.SenderEmail))
	}

	var notifier workflow.Notifier
	if cfg.AWS.AlertTopicARN != "" {
		snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region, cfg.AWS.AlertTopicARN)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		notifier = snsClient
		zapLog.Info("SNS operator alerts enabled", zap.String("topic", cfg.AWS.AlertTopicARN))
	}

	// --- Wire workflow stages ---
	stageTimeout := time.Duration(cfg.Workflow.StageTimeout) * time.Millisecond

	classifierHandler := classifier.NewHandler(&classifier.Config{Timeout: stageTimeout}, generator, log)
	routerHandler := router.NewHandler(&router.Config{Timeout: stageTimeout}, generator, log)

	sqlAgentConfig := sqlagent.LoadConfig()
	sqlAgentConfig.Timeout = stageTimeout
	sqlAgent := sqlagent.NewHandler(sqlAgentConfig, pg.DB, generator, log)
	sqlTool := sqltool.NewHandler(sqlAgent, log)

	optimizer := websearch.NewOptimizer(generator, log)
	searchConfig := &websearch.Config{
		MaxResults: cfg.Search.MaxResults,
		TopK:       cfg.Search.TopK,
		CacheTTL:   time.Duration(cfg.Search.CacheTTL) * time.Second,
		Timeout:    stageTimeout,
	}
	var answerCache *redis.Client
	if redisClient != nil {
		answerCache = redisClient.Client
	}
	summarizer := websearch.NewSummarizer(searchConfig, provider, generator, optimizer, answerCache, log)
	webTool := webtool.NewHandler(summarizer, log)

	workflowHandler := workflow.NewHandler(
		&workflow.Config{
			StageTimeout:   3 * stageTimeout,
			ReplySignature: cfg.Workflow.ReplySignature,
			ReplyEnabled:   cfg.AWS.ReplyEnabled,
		},
		classifierHandler, routerHandler, sqlTool, webTool,
		sender, notifier, obs, log,
	)

	srv := server.NewServer(workflowHandler, webTool, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Agent server stopped gracefully")
}
