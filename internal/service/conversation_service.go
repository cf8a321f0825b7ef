package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"biomeai-be/internal/config"
	"biomeai-be/internal/constant"
	"biomeai-be/internal/entity"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/pkg/events"
	"biomeai-be/pkg/llm"
	"biomeai-be/pkg/metrics"
	"biomeai-be/pkg/platform"
	"biomeai-be/pkg/rag/budget"
	"biomeai-be/pkg/rag/cost"
	"biomeai-be/pkg/rag/history"
	"biomeai-be/pkg/rag/message"
	"biomeai-be/pkg/rag/prompt"
	"biomeai-be/pkg/rag/search"
	"biomeai-be/pkg/rag/session"
	"biomeai-be/pkg/rag/state"
	"biomeai-be/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TurnRequest is one inbound message in a report thread.
type TurnRequest struct {
	MessageId string
	ThreadId  string
	User      entity.User
	Content   string
}

type TurnResult struct {
	ReportId   uuid.UUID
	FromStage  state.Stage
	Stage      state.Stage
	Action     state.Action
	Segments   []string
	Retrieval  search.Mode
	ChunkIds   []string
	Completion *llm.Completion
	CostUsd    float64
}

type IConversationService interface {
	HandleMessage(ctx context.Context, p platform.MessagingPlatform, req TurnRequest) (*TurnResult, error)
	History(ctx context.Context, threadId, userId string) (*entity.Report, []*entity.Message, error)
	DeleteReport(ctx context.Context, threadId, userId string) error
}

type conversationService struct {
	store          contract.Datastore
	llmProvider    llm.LLMProvider
	locker         *session.Locker
	retriever      *search.Orchestrator
	stateManager   *state.Manager
	promptBuilder  *prompt.Builder
	budgeter       *budget.Budgeter
	accountant     *cost.Accountant
	historyLoader  *history.Loader
	messageFactory *message.Factory
	publisher      IPublisherService
	logger         logger.ILogger
	rag            config.RagConfig
	temperature    float64
}

func NewConversationService(
	store contract.Datastore,
	llmProvider llm.LLMProvider,
	retriever *search.Orchestrator,
	locker *session.Locker,
	accountant *cost.Accountant,
	publisher IPublisherService,
	sysLogger logger.ILogger,
	ragLogger *log.Logger,
	ai config.AIConfig,
	rag config.RagConfig,
) IConversationService {
	return &conversationService{
		store:          store,
		llmProvider:    llmProvider,
		locker:         locker,
		retriever:      retriever,
		stateManager:   state.NewManager(ragLogger),
		promptBuilder:  prompt.NewBuilder(""),
		budgeter:       budget.NewBudgeter(rag.ContextTokenBudget, rag.HistoryKeep),
		accountant:     accountant,
		historyLoader:  history.NewLoader(store),
		messageFactory: message.NewFactory(),
		publisher:      publisher,
		logger:         sysLogger,
		rag:            rag,
		temperature:    ai.Temperature,
	}
}

// HandleMessage runs one turn of the report conversation. The thread is held
// for the whole turn so stage reads and writes never interleave.
func (s *conversationService) HandleMessage(ctx context.Context, p platform.MessagingPlatform, req TurnRequest) (*TurnResult, error) {
	ctx, span := otel.Tracer("biomeai/conversation").Start(ctx, "conversation.turn",
		trace.WithAttributes(attribute.String("thread.id", req.ThreadId)))
	defer span.End()

	unlock := s.locker.Lock(req.ThreadId)
	defer unlock()

	result, err := s.turn(ctx, p, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (s *conversationService) turn(ctx context.Context, p platform.MessagingPlatform, req TurnRequest, span trace.Span) (*TurnResult, error) {
	// 1. Load the report for this thread
	report, err := s.store.FindReportByThreadId(ctx, req.ThreadId)
	if err != nil {
		s.apologize(ctx, p, req.ThreadId)
		return nil, fmt.Errorf("%w: find report: %v", ErrPersistence, err)
	}
	if report == nil {
		return nil, contract.ErrReportNotFound
	}
	if report.UserId != req.User.Id {
		return nil, contract.ErrThreadOwnedByAnotherUser
	}

	stage, err := state.Parse(report.Stage)
	if err != nil {
		s.apologize(ctx, p, req.ThreadId)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	transition, err := s.stateManager.Next(stage)
	if err != nil {
		s.apologize(ctx, p, req.ThreadId)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("report.id", report.Id.String()),
		attribute.String("stage.from", string(stage)),
		attribute.String("action", string(transition.Action)),
	)

	// 2. The inbound message joins the log before anything else happens
	inbound := s.messageFactory.CreateUserMessage(req.MessageId, report.Id, req.User.Id, req.Content)
	if err := s.store.AppendMessage(ctx, inbound); err != nil {
		s.apologize(ctx, p, req.ThreadId)
		return nil, fmt.Errorf("%w: append user message: %v", ErrPersistence, err)
	}

	// 3. Retrieve and generate
	var (
		completion *llm.Completion
		text       string
		retrieved  search.Result
		metadata   = report.Metadata
		nextStage  = transition.To
	)
	switch transition.Action {
	case state.ActionAnswer:
		retrieved = s.retriever.Retrieve(ctx, req.Content, report.Id, s.rag.RetrievalK)
		completion, err = s.answer(ctx, report.Id, retrieved)
		if err == nil {
			text = completion.Text
		}
	default:
		s.notice(ctx, p, req.ThreadId, statusNotice(transition.Action))
		retrieved = s.retriever.Retrieve(ctx, transition.RetrievalQuery, report.Id, s.rag.StageContextChunks)
		nextStage, metadata = s.stateManager.Apply(transition, report.Metadata, req.Content)
		completion, err = s.synthesize(ctx, transition.Action, retrieved, metadata)
		if err == nil {
			text = decorate(transition.Action, completion.Text)
		}
	}
	if err != nil {
		// Nothing but the inbound message was written, so the next message retries this stage.
		metrics.GenerationErrors.WithLabelValues(string(transition.Action)).Inc()
		s.logger.Error("CONVERSATION", "Generation failed", map[string]interface{}{
			"report_id": report.Id.String(),
			"stage":     string(stage),
			"error":     err,
		})
		s.apologize(ctx, p, req.ThreadId)
		return nil, err
	}

	// 4. Commit stage and metadata
	if nextStage != stage || transition.MetadataKey != "" {
		updated := *report
		updated.Stage = nextStage.String()
		updated.Metadata = metadata
		if err := s.store.UpdateReportProgress(ctx, &updated); err != nil {
			s.logger.Error("CONVERSATION", "Failed to commit stage", map[string]interface{}{
				"report_id": report.Id.String(),
				"error":     err,
			})
			s.apologize(ctx, p, req.ThreadId)
			return nil, fmt.Errorf("%w: update report progress: %v", ErrPersistence, err)
		}
		if nextStage != stage {
			metrics.StageTransitions.WithLabelValues(string(stage), string(nextStage)).Inc()
		}
	}

	// 5. Deliver
	segments := utils.SplitMessage(text, s.rag.SegmentLimit, s.rag.SegmentBuffer)
	ids, err := platform.SendSegments(ctx, p, req.ThreadId, segments)
	if err != nil {
		s.logger.Warn("CONVERSATION", "Failed to deliver reply", map[string]interface{}{
			"report_id": report.Id.String(),
			"delivered": len(ids),
			"segments":  len(segments),
			"error":     err,
		})
	}
	if transition.Action == state.ActionExecutiveSummary {
		s.notice(ctx, p, req.ThreadId, constant.ReadyForQuestions)
	}

	// 6. Record the reply and its usage
	replyId := "local-" + uuid.NewString()
	if len(ids) > 0 {
		replyId = ids[0]
	}
	costUsd := s.accountant.ChatCost(completion.InputTokens, completion.OutputTokens)
	reply := s.messageFactory.CreateAssistantMessage(replyId, report.Id, text, completion, costUsd, retrieved.ChunkIds())
	if err := s.store.AppendMessage(ctx, reply); err != nil {
		s.logger.Error("CONVERSATION", "Failed to store assistant message", map[string]interface{}{
			"report_id": report.Id.String(),
			"error":     err,
		})
	}
	metrics.RecordUsage(completion.InputTokens, completion.OutputTokens, costUsd)

	// 7. Announce
	if nextStage != stage {
		s.publish(ctx, events.NewStageAdvanced(report.Id.String(), string(stage), string(nextStage)))
	}
	s.publish(ctx, events.NewUsageRecorded(report.Id.String(), replyId, completion.InputTokens, completion.OutputTokens, costUsd))

	return &TurnResult{
		ReportId:   report.Id,
		FromStage:  stage,
		Stage:      nextStage,
		Action:     transition.Action,
		Segments:   segments,
		Retrieval:  retrieved.Mode,
		ChunkIds:   retrieved.ChunkIds(),
		Completion: completion,
		CostUsd:    costUsd,
	}, nil
}

// answer replies from the report context and the conversation so far. The
// inbound message is already the last entry of the loaded history.
func (s *conversationService) answer(ctx context.Context, reportId uuid.UUID, retrieved search.Result) (*llm.Completion, error) {
	conversation, err := s.historyLoader.LoadConversationHistory(ctx, reportId)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrPersistence, err)
	}

	messages := s.budgeter.Fit(s.promptBuilder.SystemMessages(retrieved.Contents()), conversation)
	return s.llmProvider.Complete(ctx, messages,
		llm.WithTemperature(s.temperature),
		llm.WithMaxTokens(s.rag.AnswerMaxTokens),
	)
}

func (s *conversationService) synthesize(ctx context.Context, action state.Action, retrieved search.Result, metadata map[string]interface{}) (*llm.Completion, error) {
	messages, err := s.promptBuilder.StageMessages(action, retrieved.Contents(), metadata)
	if err != nil {
		return nil, err
	}

	maxTokens := s.rag.PredictionMaxTokens
	if action == state.ActionExecutiveSummary {
		maxTokens = s.rag.SummaryMaxTokens
	}
	return s.llmProvider.Complete(ctx, messages,
		llm.WithTemperature(s.temperature),
		llm.WithMaxTokens(maxTokens),
	)
}

func (s *conversationService) History(ctx context.Context, threadId, userId string) (*entity.Report, []*entity.Message, error) {
	report, err := s.ownedReport(ctx, threadId, userId)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.store.FindMessages(ctx, report.Id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: find messages: %v", ErrPersistence, err)
	}
	return report, messages, nil
}

func (s *conversationService) DeleteReport(ctx context.Context, threadId, userId string) error {
	unlock := s.locker.Lock(threadId)
	defer unlock()

	report, err := s.ownedReport(ctx, threadId, userId)
	if err != nil {
		return err
	}
	if err := s.store.PurgeReport(ctx, report.Id); err != nil {
		if errors.Is(err, contract.ErrReportNotFound) {
			return err
		}
		return fmt.Errorf("%w: purge report: %v", ErrPersistence, err)
	}
	return nil
}

func (s *conversationService) ownedReport(ctx context.Context, threadId, userId string) (*entity.Report, error) {
	report, err := s.store.FindReportByThreadId(ctx, threadId)
	if err != nil {
		return nil, fmt.Errorf("%w: find report: %v", ErrPersistence, err)
	}
	if report == nil {
		return nil, contract.ErrReportNotFound
	}
	if report.UserId != userId {
		return nil, contract.ErrThreadOwnedByAnotherUser
	}
	return report, nil
}

func (s *conversationService) apologize(ctx context.Context, p platform.MessagingPlatform, threadId string) {
	s.notice(ctx, p, threadId, constant.GenericErrorMessage)
}

func (s *conversationService) notice(ctx context.Context, p platform.MessagingPlatform, threadId, text string) {
	if text == "" {
		return
	}
	if _, err := p.Send(ctx, threadId, text); err != nil {
		s.logger.Warn("CONVERSATION", "Failed to send notice", map[string]interface{}{"error": err})
	}
}

func (s *conversationService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("CONVERSATION", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err,
		})
	}
}

func statusNotice(action state.Action) string {
	switch action {
	case state.ActionDietPrediction:
		return constant.DietStatusMessage
	case state.ActionSymptomsPrediction:
		return constant.SymptomsStatusMessage
	case state.ActionExecutiveSummary:
		return constant.SummaryStatusMessage
	}
	return ""
}

// decorate frames a stage synthesis with its header and follow-up question.
func decorate(action state.Action, body string) string {
	switch action {
	case state.ActionDietPrediction:
		return constant.DietPredictionHeader + body + constant.DietPredictionFooter
	case state.ActionSymptomsPrediction:
		return constant.SymptomsHeader + body + constant.SymptomsFooter
	case state.ActionExecutiveSummary:
		return constant.ExecutiveSummaryHeader + body
	}
	return body
}
