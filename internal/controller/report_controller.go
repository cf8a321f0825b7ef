package controller

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"biomeai-be/internal/dto"
	"biomeai-be/internal/entity"
	"biomeai-be/internal/pkg/serverutils"
	"biomeai-be/internal/service"
	"biomeai-be/pkg/platform"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// apiChannelId is the channel REST uploads are attributed to before a thread exists.
const apiChannelId = "api"

type IReportController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Upload(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

// reportController exposes the chat flow over HTTP. Each request gets its own
// recorder platform, and whatever the services sent is returned in the body.
type reportController struct {
	ingestion    service.IIngestionService
	conversation service.IConversationService
	maxUpload    int64
}

func NewReportController(ingestion service.IIngestionService, conversation service.IConversationService, maxUpload int64) IReportController {
	return &reportController{
		ingestion:    ingestion,
		conversation: conversation,
		maxUpload:    maxUpload,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/report/v1")
	h.Use(auth)
	h.Post("upload", c.Upload)
	h.Post("threads/:threadId/messages", c.SendMessage)
	h.Get("threads/:threadId/messages", c.History)
	h.Delete("threads/:threadId", c.Delete)
}

func (c *reportController) Upload(ctx *fiber.Ctx) error {
	userId, name := serverutils.CurrentUser(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if c.maxUpload > 0 && fileHeader.Size > c.maxUpload {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", c.maxUpload))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return err
	}

	filename := filepath.Base(fileHeader.Filename)
	url := "upload://" + uuid.NewString() + "/" + filename
	rec := platform.NewRecorder()
	rec.AddFile(url, buf.Bytes())

	req := service.UploadRequest{
		MessageId: uuid.NewString(),
		ChannelId: apiChannelId,
		User:      entity.User{Id: userId, Username: name},
		Attachment: platform.Attachment{
			Filename:    filename,
			URL:         url,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        int(fileHeader.Size),
		},
	}
	if threadId := ctx.FormValue("thread_id"); threadId != "" {
		req.ChannelId = threadId
		req.InThread = true
	}

	res, err := c.ingestion.Ingest(ctx.UserContext(), rec, req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload report", &dto.UploadReportResponse{
		ReportId:         res.Report.Id,
		ThreadId:         res.ThreadId,
		Chunks:           res.Chunks,
		Embedded:         res.Embedded,
		ReplacedReportId: res.PurgedReportId,
		Messages:         toOutbound(rec.Sent()),
	}))
}

func (c *reportController) SendMessage(ctx *fiber.Ctx) error {
	userId, name := serverutils.CurrentUser(ctx)

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	rec := platform.NewRecorder()
	res, err := c.conversation.HandleMessage(ctx.UserContext(), rec, service.TurnRequest{
		MessageId: uuid.NewString(),
		ThreadId:  ctx.Params("threadId"),
		User:      entity.User{Id: userId, Username: name},
		Content:   req.Content,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", &dto.SendMessageResponse{
		ReportId:     res.ReportId,
		FromStage:    string(res.FromStage),
		Stage:        string(res.Stage),
		Action:       string(res.Action),
		Retrieval:    string(res.Retrieval),
		ChunkIds:     res.ChunkIds,
		InputTokens:  res.Completion.InputTokens,
		OutputTokens: res.Completion.OutputTokens,
		CostUsd:      res.CostUsd,
		Messages:     toOutbound(rec.Sent()),
	}))
}

func (c *reportController) History(ctx *fiber.Ctx) error {
	userId, _ := serverutils.CurrentUser(ctx)

	report, messages, err := c.conversation.History(ctx.UserContext(), ctx.Params("threadId"), userId)
	if err != nil {
		return err
	}

	res := &dto.HistoryResponse{
		Report: dto.ReportResponse{
			Id:               report.Id,
			ThreadId:         report.ThreadId,
			OriginalFilename: report.OriginalFilename,
			SampleDate:       report.SampleDate,
			Stage:            report.Stage,
			Metadata:         report.Metadata,
			CreatedAt:        report.CreatedAt,
		},
		Messages: make([]dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, dto.MessageResponse{
			Id:                m.Id,
			Role:              m.Role,
			Content:           m.Content,
			InputTokens:       m.InputTokens,
			OutputTokens:      m.OutputTokens,
			CostUsd:           m.CostUsd,
			RetrievedChunkIds: m.RetrievedChunkIds,
			CreatedAt:         m.CreatedAt,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *reportController) Delete(ctx *fiber.Ctx) error {
	userId, _ := serverutils.CurrentUser(ctx)

	if err := c.conversation.DeleteReport(ctx.UserContext(), ctx.Params("threadId"), userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete report", nil))
}

func toOutbound(sent []platform.Outbound) []dto.OutboundMessage {
	out := make([]dto.OutboundMessage, len(sent))
	for i, s := range sent {
		out[i] = dto.OutboundMessage{
			Id:        s.Id,
			ChannelId: s.ChannelId,
			ReplyTo:   s.ReplyTo,
			Content:   s.Content,
			SentAt:    s.SentAt,
		}
	}
	return out
}
