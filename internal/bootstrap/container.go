package bootstrap

import (
	"log"

	"ai-askflow-be/internal/config"
	"ai-askflow-be/internal/controller"
	"ai-askflow-be/internal/pkg/logger"
	"ai-askflow-be/internal/service"
	"ai-askflow-be/pkg/llm/factory"
)

type Container struct {
	// Controllers
	AskController controller.IAskController

	// Core Facades
	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. LLM Provider
	// One shared client for every session; the pipeline only issues calls,
	// it never mutates provider state, so concurrent sessions are safe.
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.AnswerModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (rewrite=%s merge=%s answer=%s)",
		cfg.Ai.LLMProvider, cfg.Ai.RewriteModel, cfg.Ai.MergeModel, cfg.Ai.AnswerModel)

	// 3. Services
	askService := service.NewAskService(cfg, llmProvider, sysLogger)

	// 4. Controllers
	askController := controller.NewAskController(askService, cfg, sysLogger)

	return &Container{
		AskController: askController,
		Logger:        sysLogger,
	}
}
