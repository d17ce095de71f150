package service

import (
	"context"
	"time"

	"ai-askflow-be/internal/config"
	"ai-askflow-be/internal/constant"
	"ai-askflow-be/internal/dto"
	"ai-askflow-be/internal/pkg/logger"
	"ai-askflow-be/pkg/ask/answer"
	"ai-askflow-be/pkg/ask/chunker"
	"ai-askflow-be/pkg/ask/ident"
	"ai-askflow-be/pkg/ask/prompt"
	"ai-askflow-be/pkg/ask/rewrite"
	"ai-askflow-be/pkg/ask/stream"
	"ai-askflow-be/pkg/llm"
)

const moduleAsk = "ASK"

// IAskService drives one ask session from acceptance to the terminal event.
type IAskService interface {
	// HandleAsk runs the whole pipeline, emitting every event through sink.
	// It never panics the host; stage failures become action-error or
	// answer-error events followed by ask-ended. The returned error is for
	// the caller's log only, the client has already been told.
	HandleAsk(ctx context.Context, req *dto.AskRequest, sink stream.Emitter) error
}

// askService chains the pipeline stages: rewrite fan-out (parallel, barrier
// join), rewrite merge (streamed, chunked), answer (streamed). One instance
// serves all sessions; per-session state lives on the stack of HandleAsk.
type askService struct {
	fanout      *rewrite.Fanout
	merger      *rewrite.Merger
	answerStage *answer.Stage
	callTimeout time.Duration
	log         logger.ILogger
}

func NewAskService(cfg *config.Config, provider llm.LLMProvider, log logger.ILogger) IAskService {
	mergePolicy := chunker.Policy{
		Mode:      chunker.Mode(cfg.Ask.MergeChunkMode),
		Base:      cfg.Ask.MergeChunkBase,
		Increment: cfg.Ask.MergeChunkIncrement,
	}
	answerPolicy := chunker.Policy{
		Mode:      chunker.Mode(cfg.Ask.AnswerChunkMode),
		Base:      cfg.Ask.MergeChunkBase,
		Increment: cfg.Ask.MergeChunkIncrement,
	}

	return &askService{
		fanout: rewrite.NewFanout(
			provider,
			cfg.Ai.RewriteModel,
			cfg.Ask.RewriteCount,
			rewrite.Policy(cfg.Ask.FanoutPolicy),
		),
		merger:      rewrite.NewMerger(provider, cfg.Ai.MergeModel, mergePolicy),
		answerStage: answer.NewStage(provider, cfg.Ai.AnswerModel, answerPolicy),
		callTimeout: cfg.Ask.CallTimeout,
		log:         log,
	}
}

func (s *askService) HandleAsk(ctx context.Context, req *dto.AskRequest, sink stream.Emitter) error {
	why := constant.DefaultWhy
	if req.Why != nil && *req.Why != "" {
		why = *req.Why
	}

	instanceId := ident.New(constant.IdPrefixAsk)
	s.log.Info(moduleAsk, "New ask received", map[string]interface{}{
		"instanceId": instanceId,
		"query":      req.Query,
	})

	sessionMeta := dto.EventMeta{Id: instanceId}
	if err := sink.Emit(ctx, stream.KindAskStarted, dto.AskLifecyclePayload{Meta: sessionMeta}); err != nil {
		return err
	}

	// Best effort: if the transport died, the events are lost anyway.
	endSession := func() {
		_ = sink.Emit(ctx, stream.KindAskEnded, dto.AskLifecyclePayload{Meta: sessionMeta})
	}

	question, err := s.runQuestionStage(ctx, sink, instanceId, req.Query, why)
	if err != nil {
		endSession()
		return err
	}

	err = s.runAnswerStage(ctx, sink, instanceId, question)
	endSession()
	return err
}

// runQuestionStage covers fan-out and merge: both report under one action
// correlation id, exactly as one "gen-better-question" process.
func (s *askService) runQuestionStage(ctx context.Context, sink stream.Emitter, instanceId, query, why string) (string, error) {
	actionId := ident.New(constant.IdPrefixAction)
	meta := dto.EventMeta{InstanceId: instanceId}

	s.log.Info(moduleAsk, "Requesting better question", map[string]interface{}{
		"instanceId": instanceId,
		"actionId":   actionId,
	})

	if err := sink.Emit(ctx, stream.KindActionStart, dto.ActionStartPayload{
		Name: constant.ActionGenBetterQuestion,
		Id:   actionId,
		Meta: meta,
	}); err != nil {
		return "", err
	}

	if err := sink.Emit(ctx, stream.KindActionOutput, dto.ActionOutputPayload{
		Id: actionId,
		Output: dto.ActionStatusOutput{
			Status: constant.StatusRequestingRewrites,
			Count:  s.fanout.Count(),
		},
		Meta: meta,
	}); err != nil {
		return "", err
	}

	fanCtx, cancelFan := context.WithTimeout(ctx, s.callTimeout)
	rewrites, err := s.fanout.Run(fanCtx, prompt.RewriteMessages(query, why))
	cancelFan()
	if err != nil {
		return "", s.failStage(ctx, sink, stream.KindActionError, actionId, meta, err)
	}

	if err := sink.Emit(ctx, stream.KindActionOutput, dto.ActionOutputPayload{
		Id: actionId,
		Output: dto.ActionStatusOutput{
			Status: constant.StatusInitialRewriteDone,
			Output: rewrites,
		},
		Meta: meta,
	}); err != nil {
		return "", err
	}

	s.log.Debug(moduleAsk, "Got rewrites, asking big model to merge", map[string]interface{}{
		"instanceId":   instanceId,
		"rewriteCount": len(rewrites),
	})

	mergeCtx, cancelMerge := context.WithTimeout(ctx, s.callTimeout)
	defer cancelMerge()

	question, err := s.merger.Run(mergeCtx, prompt.MergeMessages(query, why, rewrites), func(accumulated string) error {
		return sink.Emit(ctx, stream.KindActionOutput, dto.ActionOutputPayload{
			Id:    actionId,
			Chunk: accumulated,
			Meta:  meta,
		})
	})
	if err != nil {
		return "", s.failStage(ctx, sink, stream.KindActionError, actionId, meta, err)
	}

	s.log.Info(moduleAsk, "Got a much better question, hopefully", map[string]interface{}{
		"instanceId": instanceId,
		"question":   question,
	})

	// The terminal output always carries the complete text, even when every
	// partial chunk arrived: chunk delivery is allowed to be lossy client-side.
	if err := sink.Emit(ctx, stream.KindActionEnd, dto.ActionEndPayload{
		Id:     actionId,
		Output: question,
		Meta:   meta,
	}); err != nil {
		return "", err
	}

	return question, nil
}

func (s *askService) runAnswerStage(ctx context.Context, sink stream.Emitter, instanceId, question string) error {
	answerId := ident.New(constant.IdPrefixAnswer)
	meta := dto.EventMeta{InstanceId: instanceId}

	if err := sink.Emit(ctx, stream.KindAnswerStart, dto.AnswerLifecyclePayload{
		Id:   answerId,
		Meta: meta,
	}); err != nil {
		return err
	}

	answerCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	onDelta := func(delta string) error {
		return sink.Emit(ctx, stream.KindAnswerOutput, dto.AnswerOutputPayload{
			Id:    answerId,
			Chunk: delta,
			Meta:  meta,
		})
	}
	onToggle := func(entered bool) error {
		sentinel := answer.SentinelThinkClose
		if entered {
			sentinel = answer.SentinelThinkOpen
		}
		return sink.Emit(ctx, stream.KindAnswerOutput, dto.AnswerOutputPayload{
			Id:    answerId,
			Chunk: sentinel,
			Meta:  meta,
		})
	}

	if _, err := s.answerStage.Run(answerCtx, prompt.AnswerMessages(question), onDelta, onToggle); err != nil {
		return s.failStage(ctx, sink, stream.KindAnswerError, answerId, meta, err)
	}

	return sink.Emit(ctx, stream.KindAnswerStop, dto.AnswerLifecyclePayload{
		Id:   answerId,
		Meta: meta,
	})
}

// failStage reports a stage failure to the client and logs it. The original
// error is returned so the session unwinds.
func (s *askService) failStage(ctx context.Context, sink stream.Emitter, kind stream.Kind, id string, meta dto.EventMeta, stageErr error) error {
	s.log.Error(moduleAsk, "Ask stage failed", map[string]interface{}{
		"instanceId": meta.InstanceId,
		"stageId":    id,
		"error":      stageErr.Error(),
	})

	_ = sink.Emit(ctx, kind, dto.StageErrorPayload{
		Id:    id,
		Error: dto.EventError{Message: stageErr.Error()},
		Meta:  meta,
	})

	return stageErr
}
