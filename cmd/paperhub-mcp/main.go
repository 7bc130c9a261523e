// Command paperhub-mcp exposes the exam extractor as an MCP tool over
// stdio, so an assistant can turn a local PDF into structured questions
// without the HTTP server.
//
// It reads the same environment as the server (EXTRACTION_PROVIDER,
// GEMINI_API_KEY, ...). Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Shimizu-Technology/paperhub-api/internal/config"
	"github.com/Shimizu-Technology/paperhub-api/internal/logger"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log := logger.Configure(logger.Config{Level: logger.InfoLevel, Output: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	log = logger.Configure(logger.Config{Level: logger.LogLevel(cfg.LogLevel), Output: os.Stderr})

	backend, err := extraction.NewBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to configure extraction backend")
	}
	gateway, err := extraction.NewGateway(backend, extraction.OptionsFromConfig(cfg), logger.Component("extraction"))
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to build extraction gateway")
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "paperhub", Version: Version}, nil)
	handler := &parseHandler{gateway: gateway}
	mcp.AddTool(server, ParseTool(), handler.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("provider", gateway.Provider()).Msg("🚀 paperhub-mcp serving on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("❌ Server failed")
	}
}
