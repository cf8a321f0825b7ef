package service

import (
	"context"
	"fmt"
	"time"

	"biomeai-be/internal/entity"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/pkg/llm"
	"biomeai-be/pkg/rag/search"
)

type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Retrieval string `json:"retrieval"`
	Model     string `json:"model"`
	Uptime    string `json:"uptime"`
}

type IStatsService interface {
	Usage(ctx context.Context) (*entity.UsageStats, error)
	Health(ctx context.Context) *HealthStatus
	FormatUsage(stats *entity.UsageStats) string
	FormatHealth(status *HealthStatus) string
}

type statsService struct {
	store       contract.Datastore
	retriever   *search.Orchestrator
	llmProvider llm.LLMProvider
	startedAt   time.Time
}

func NewStatsService(store contract.Datastore, retriever *search.Orchestrator, llmProvider llm.LLMProvider) IStatsService {
	return &statsService{
		store:       store,
		retriever:   retriever,
		llmProvider: llmProvider,
		startedAt:   time.Now(),
	}
}

func (s *statsService) Usage(ctx context.Context) (*entity.UsageStats, error) {
	stats, err := s.store.UsageStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: usage stats: %v", ErrPersistence, err)
	}
	return stats, nil
}

func (s *statsService) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Database:  "ok",
		Retrieval: string(search.ModePositional),
		Model:     s.llmProvider.Name(),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	}
	if s.retriever.VectorEnabled() {
		status.Retrieval = string(search.ModeVector)
	}
	if _, err := s.store.UsageStats(ctx); err != nil {
		status.Status = "degraded"
		status.Database = err.Error()
	}
	return status
}

func (s *statsService) FormatUsage(stats *entity.UsageStats) string {
	return fmt.Sprintf("📊 **BiomeAI Stats**\n"+
		"👥 Users: %d\n"+
		"📄 Reports: %d\n"+
		"💬 Messages: %d\n"+
		"💰 Total cost: $%.4f",
		stats.Users, stats.Reports, stats.Messages, stats.TotalCostUsd)
}

func (s *statsService) FormatHealth(status *HealthStatus) string {
	icon := "✅"
	if status.Status != "healthy" {
		icon = "⚠️"
	}
	return fmt.Sprintf("%s BiomeAI is %s\nDatabase: %s\nRetrieval: %s\nModel: %s\nUptime: %s",
		icon, status.Status, status.Database, status.Retrieval, status.Model, status.Uptime)
}
