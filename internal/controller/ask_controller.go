package controller

import (
	"bufio"
	"context"
	"time"

	"ai-askflow-be/internal/config"
	"ai-askflow-be/internal/dto"
	"ai-askflow-be/internal/pkg/logger"
	"ai-askflow-be/internal/pkg/serverutils"
	"ai-askflow-be/internal/service"
	"ai-askflow-be/pkg/ask/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const moduleAskHTTP = "ASK_HTTP"

type IAskController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type askController struct {
	askService     service.IAskService
	sessionTimeout time.Duration
	streamBuffer   int
	log            logger.ILogger
}

func NewAskController(askService service.IAskService, cfg *config.Config, log logger.ILogger) IAskController {
	return &askController{
		askService:     askService,
		sessionTimeout: cfg.Ask.SessionTimeout,
		streamBuffer:   cfg.Ask.StreamBuffer,
		log:            log,
	}
}

func (c *askController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ask/v1")
	h.Post("", c.Ask)
}

// Ask accepts one ask request and answers with the event stream itself:
// there is no separate submit and poll. Validation failures are reported
// synchronously, before the stream starts.
func (c *askController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no") // keep reverse proxies from buffering the stream

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		c.streamAsk(&req, w)
	}))

	return nil
}

// streamAsk runs the pipeline in its own goroutine and drains the session
// sink into the response. A failed write means the client is gone: the
// session context is cancelled, which releases every in-flight model call,
// and no further events are attempted.
func (c *askController) streamAsk(req *dto.AskRequest, w *bufio.Writer) {
	sessCtx, cancel := context.WithTimeout(context.Background(), c.sessionTimeout)
	defer cancel()

	sess := stream.NewSession(c.streamBuffer)
	go func() {
		defer sess.Close()
		if err := c.askService.HandleAsk(sessCtx, req, sess); err != nil {
			c.log.Warn(moduleAskHTTP, "Ask session ended with error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	for ev := range sess.Events() {
		if err := stream.WriteSSE(w, ev); err != nil {
			c.log.Warn(moduleAskHTTP, "Client connection lost, aborting ask session", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if err := w.Flush(); err != nil {
			c.log.Warn(moduleAskHTTP, "Client connection lost, aborting ask session", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}
}
