package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"biomeai-be/internal/config"
	"biomeai-be/internal/constant"
	"biomeai-be/internal/entity"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/pkg/document"
	"biomeai-be/pkg/embedding"
	"biomeai-be/pkg/events"
	"biomeai-be/pkg/guard"
	"biomeai-be/pkg/llm"
	"biomeai-be/pkg/metrics"
	"biomeai-be/pkg/platform"
	"biomeai-be/pkg/rag/budget"
	"biomeai-be/pkg/rag/cost"
	"biomeai-be/pkg/rag/message"
	"biomeai-be/pkg/rag/session"
	"biomeai-be/pkg/rag/state"
	"biomeai-be/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// UploadRequest is a report attachment posted by a user.
type UploadRequest struct {
	MessageId  string // inbound message carrying the attachment
	ChannelId  string
	InThread   bool // ChannelId is already a report thread
	User       entity.User
	Attachment platform.Attachment
}

type UploadResult struct {
	Report         *entity.Report
	ThreadId       string
	Chunks         int
	Embedded       int
	PurgedReportId *uuid.UUID
}

type IIngestionService interface {
	Ingest(ctx context.Context, p platform.MessagingPlatform, req UploadRequest) (*UploadResult, error)
}

type ingestionService struct {
	store             contract.Datastore
	decoder           document.Decoder
	embeddingProvider embedding.EmbeddingProvider
	uploadGuard       guard.UploadGuard
	locker            *session.Locker
	accountant        *cost.Accountant
	messageFactory    *message.Factory
	publisher         IPublisherService
	logger            logger.ILogger
	rag               config.RagConfig
	now               func() time.Time
}

// NewIngestionService wires the upload pipeline. embeddingProvider may be nil,
// in which case chunks are stored without vectors.
func NewIngestionService(
	store contract.Datastore,
	decoder document.Decoder,
	embeddingProvider embedding.EmbeddingProvider,
	uploadGuard guard.UploadGuard,
	locker *session.Locker,
	accountant *cost.Accountant,
	publisher IPublisherService,
	log logger.ILogger,
	rag config.RagConfig,
) IIngestionService {
	return &ingestionService{
		store:             store,
		decoder:           decoder,
		embeddingProvider: embeddingProvider,
		uploadGuard:       uploadGuard,
		locker:            locker,
		accountant:        accountant,
		messageFactory:    message.NewFactory(),
		publisher:         publisher,
		logger:            log,
		rag:               rag,
		now:               time.Now,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, p platform.MessagingPlatform, req UploadRequest) (*UploadResult, error) {
	ctx, span := otel.Tracer("biomeai/ingestion").Start(ctx, "ingestion.ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", req.User.Id),
		attribute.String("file.name", req.Attachment.Filename),
	)

	if !document.Supported(req.Attachment.Filename) {
		s.reply(ctx, p, req, constant.UnsupportedFileMessage)
		metrics.IngestionsTotal.WithLabelValues("unsupported").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, req.Attachment.Filename)
	}

	var result *UploadResult
	err := guard.Run(ctx, s.uploadGuard, req.User.Id, func(ctx context.Context) error {
		var err error
		result, err = s.ingest(ctx, p, req)
		return err
	})
	if errors.Is(err, guard.ErrConcurrencyRejected) {
		s.reply(ctx, p, req, constant.UploadInProgressMessage)
		metrics.IngestionsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrUploadInProgress
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (s *ingestionService) ingest(ctx context.Context, p platform.MessagingPlatform, req UploadRequest) (*UploadResult, error) {
	started := s.now()
	filename := req.Attachment.Filename

	// 1. Register the user
	user := req.User
	if err := s.store.UpsertUser(ctx, &user); err != nil {
		s.reply(ctx, p, req, constant.GenericErrorMessage)
		return nil, fmt.Errorf("%w: upsert user: %v", ErrPersistence, err)
	}

	// 2. Resolve the report thread
	threadId := req.ChannelId
	if !req.InThread {
		name := fmt.Sprintf(constant.ThreadNameFormat, filename, user.Username)
		id, err := p.CreateThread(ctx, req.ChannelId, req.MessageId, name)
		if err != nil {
			s.reply(ctx, p, req, constant.GenericErrorMessage)
			return nil, fmt.Errorf("create thread: %w", err)
		}
		threadId = id
	}
	s.send(ctx, p, threadId, constant.AnalyzingReportMessage)

	// 3. Download and decode
	data, err := p.Fetch(ctx, req.Attachment)
	if err != nil {
		s.send(ctx, p, threadId, constant.DecodeFailedMessage)
		metrics.IngestionsTotal.WithLabelValues("fetch_failed").Inc()
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}

	text, err := s.decoder.Decode(ctx, filename, data)
	if err != nil {
		s.send(ctx, p, threadId, constant.DecodeFailedMessage)
		metrics.IngestionsTotal.WithLabelValues("decode_failed").Inc()
		return nil, err
	}

	md := document.ExtractMetadata(text, started)
	s.send(ctx, p, threadId, constant.IndexingReportMessage)

	// 4. Chunk and embed
	pieces := utils.SplitText(text, s.rag.ChunkSize, s.rag.ChunkOverlap)
	if len(pieces) == 0 {
		s.send(ctx, p, threadId, constant.DecodeFailedMessage)
		metrics.IngestionsTotal.WithLabelValues("decode_failed").Inc()
		return nil, fmt.Errorf("%w: %s produced no chunks", document.ErrDecode, filename)
	}

	chunks := make([]*entity.ReportChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &entity.ReportChunk{
			Id:         uuid.New(),
			ChunkIndex: piece.Index,
			Content:    piece.Content,
		}
	}
	embedded, embeddingTokens := s.embedChunks(ctx, chunks)

	// 5. Replace any earlier report on this thread
	unlock := s.locker.Lock(threadId)
	defer unlock()

	report := &entity.Report{
		Id:               uuid.New(),
		UserId:           user.Id,
		ThreadId:         threadId,
		OriginalFilename: filename,
		SampleDate:       md.SampleDate,
		Metadata:         md.ToMap(),
		Stage:            state.InitialStage.String(),
	}

	purged, err := s.store.ReplaceReport(ctx, report, chunks)
	if errors.Is(err, contract.ErrThreadOwnedByAnotherUser) {
		s.send(ctx, p, threadId, constant.ThreadOwnedMessage)
		metrics.IngestionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if err != nil {
		s.send(ctx, p, threadId, constant.GenericErrorMessage)
		metrics.IngestionsTotal.WithLabelValues("persistence_failed").Inc()
		return nil, fmt.Errorf("%w: replace report: %v", ErrPersistence, err)
	}
	if purged != nil {
		s.logger.Info("INGESTION", "Replaced earlier report on thread", map[string]interface{}{
			"thread_id":     threadId,
			"purged_report": purged.String(),
		})
	}

	// 6. Upload record, then the opening question
	record := s.messageFactory.CreateUserMessage(req.MessageId, report.Id, user.Id, fmt.Sprintf(constant.UploadRecordFormat, filename))
	if err := s.store.AppendMessage(ctx, record); err != nil {
		s.logger.Error("INGESTION", "Failed to store upload record", map[string]interface{}{"error": err})
	}

	opening := dateConfirmation(md)
	openingId, err := p.Send(ctx, threadId, opening)
	if err != nil {
		s.logger.Warn("INGESTION", "Failed to send opening message", map[string]interface{}{"error": err})
		openingId = "local-" + uuid.NewString()
	}

	embeddingCost := s.accountant.EmbeddingCost(embeddingTokens)
	usage := newEmbeddingUsage(embeddingTokens)
	assistant := s.messageFactory.CreateAssistantMessage(openingId, report.Id, opening, usage, embeddingCost, nil)
	if err := s.store.AppendMessage(ctx, assistant); err != nil {
		s.logger.Error("INGESTION", "Failed to store opening message", map[string]interface{}{"error": err})
	}

	metrics.TokensTotal.WithLabelValues("embedding").Add(float64(embeddingTokens))
	metrics.CostUSDTotal.Add(embeddingCost)
	metrics.IngestionsTotal.WithLabelValues("success").Inc()
	metrics.IngestionDuration.Observe(s.now().Sub(started).Seconds())

	s.publish(ctx, events.NewReportIngested(report.Id.String(), user.Id, threadId, len(chunks), embedded))
	s.logger.Info("INGESTION", "Report ingested", map[string]interface{}{
		"report_id": report.Id.String(),
		"thread_id": threadId,
		"chunks":    len(chunks),
		"embedded":  embedded,
	})

	return &UploadResult{
		Report:         report,
		ThreadId:       threadId,
		Chunks:         len(chunks),
		Embedded:       embedded,
		PurgedReportId: purged,
	}, nil
}

// embedChunks fills chunk embeddings in place. A failed call leaves that
// chunk without a vector. It returns how many succeeded and their estimated tokens.
func (s *ingestionService) embedChunks(ctx context.Context, chunks []*entity.ReportChunk) (int, int) {
	if s.embeddingProvider == nil {
		return 0, 0
	}

	var embedded, tokens atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.rag.EmbeddingWorkers))

	for _, chunk := range chunks {
		g.Go(func() error {
			vector, err := s.embeddingProvider.Embed(gctx, chunk.Content)
			if err != nil {
				s.logger.Warn("INGESTION", "Chunk embedding failed", map[string]interface{}{
					"chunk_index": chunk.ChunkIndex,
					"error":       err,
				})
				return nil
			}
			chunk.Embedding = vector
			embedded.Add(1)
			tokens.Add(int64(budget.EstimateTokens(chunk.Content)))
			return nil
		})
	}
	_ = g.Wait()

	return int(embedded.Load()), int(tokens.Load())
}

func (s *ingestionService) reply(ctx context.Context, p platform.MessagingPlatform, req UploadRequest, text string) {
	if _, err := p.Reply(ctx, req.ChannelId, req.MessageId, text); err != nil {
		s.logger.Warn("INGESTION", "Failed to reply", map[string]interface{}{"error": err})
	}
}

func (s *ingestionService) send(ctx context.Context, p platform.MessagingPlatform, channelId, text string) {
	if _, err := p.Send(ctx, channelId, text); err != nil {
		s.logger.Warn("INGESTION", "Failed to send notice", map[string]interface{}{"error": err})
	}
}

func (s *ingestionService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("INGESTION", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err,
		})
	}
}

// newEmbeddingUsage books ingestion embedding tokens as input tokens on the opening message.
func newEmbeddingUsage(tokens int) *llm.Completion {
	return &llm.Completion{InputTokens: tokens}
}

func dateConfirmation(md document.Metadata) string {
	if md.SampleDate == nil {
		return constant.DateConfirmationUnknown
	}
	return fmt.Sprintf(constant.DateConfirmationKnownFormat, md.SampleDate.Format("January 02, 2006"), md.SampleAgeMonths)
}
