package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"biomeai-be/internal/config"
	"biomeai-be/internal/controller"
	"biomeai-be/internal/handler"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/repository/memory"
	"biomeai-be/internal/repository/store"
	"biomeai-be/internal/service"
	"biomeai-be/pkg/document"
	"biomeai-be/pkg/embedding"
	"biomeai-be/pkg/guard"
	"biomeai-be/pkg/llm/factory"
	"biomeai-be/pkg/rag/cost"
	"biomeai-be/pkg/rag/search"
	"biomeai-be/pkg/rag/session"

	pktNats "biomeai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// maxUploadBytes mirrors the Discord attachment ceiling for REST uploads.
const maxUploadBytes = 25 << 20

type Container struct {
	// Controllers
	ReportController controller.IReportController
	SystemController controller.ISystemController

	// Chat platform entry point
	MessageHandler *handler.MessageHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    *service.AuditService

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every dependency. db may be nil, in which case reports
// live in process memory and retrieval falls back to positional order.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Loggers
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	eventLogger := logger.NewIsolatedLogger(cfg.App.EventLogFilePath)
	ragLogger := initRagLogger()
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync(); _ = eventLogger.Sync() })

	// 2. Storage
	var datastore contract.Datastore
	if db != nil {
		datastore = store.NewGormStore(db)
	} else {
		log.Printf("[WARN] No database configured, using in-memory store")
		datastore = memory.NewDatastore()
	}

	// 3. Model providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimensions, cfg.Ai.OpenAIBaseURL)
		log.Printf("[INFO] Using embedding model: %s (%d dims)", cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimensions)
	} else {
		log.Printf("[INFO] Embeddings disabled, retrieval is positional")
	}

	llmBaseURL, llmKey := cfg.LLMCredentials()
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL, llmKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Concurrency primitives
	uploadGuard := newUploadGuard(cfg, c)
	locker := session.NewLocker()
	accountant := cost.NewAccountant(cost.Rates{
		InputPer1K:  cfg.Rag.ChatInputCostPer1K,
		OutputPer1K: cfg.Rag.ChatOutputCostPer1K,
	}, cfg.Rag.EmbeddingCostPer1K)
	retriever := search.NewOrchestrator(context.Background(), datastore, embeddingProvider, ragLogger)

	// 5. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var relay service.EventRelay
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			relay = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.AuditService = service.NewAuditService(natsSub, eventLogger)
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.EventTopic, relay, eventLogger)

	// 6. Services
	ingestionService := service.NewIngestionService(
		datastore,
		document.NewDecoder(),
		embeddingProvider,
		uploadGuard,
		locker,
		accountant,
		publisherService,
		sysLogger,
		cfg.Rag,
	)
	conversationService := service.NewConversationService(
		datastore,
		llmProvider,
		retriever,
		locker,
		accountant,
		publisherService,
		sysLogger,
		ragLogger,
		cfg.Ai,
		cfg.Rag,
	)
	statsService := service.NewStatsService(datastore, retriever, llmProvider)

	// 7. Entry points
	c.MessageHandler = handler.NewMessageHandler(ingestionService, conversationService, statsService, sysLogger)
	c.ReportController = controller.NewReportController(ingestionService, conversationService, maxUploadBytes)
	c.SystemController = controller.NewSystemController(statsService, sysLogger)

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newUploadGuard(cfg *config.Config, c *Container) guard.UploadGuard {
	if cfg.App.UploadGuardDriver != "redis" {
		return guard.NewMemoryGuard()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory upload guard", err)
		_ = rdb.Close()
		return guard.NewMemoryGuard()
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	return guard.NewRedisGuard(rdb, guard.DefaultTTL)
}

func initRagLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
