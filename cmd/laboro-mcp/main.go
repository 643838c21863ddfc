package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/laboro/internal/common"
	"github.com/ternarybob/laboro/internal/services/response"
	"github.com/ternarybob/laboro/internal/storage/sqlite"
)

func main() {
	configPath := os.Getenv("LABORO_CONFIG")
	if configPath == "" {
		configPath = "laboro.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console-only logger; stdio transport shares stdout with the protocol,
	// so keep log output on stderr and quiet
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := sqlite.NewManager(logger, &config.Storage.SQLite)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	composer := response.NewComposer()

	mcpServer := server.NewMCPServer(
		"laboro",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Query tools
	mcpServer.AddTool(createSearchJobsTool(), handleSearchJobs(storageManager, composer, logger))
	mcpServer.AddTool(createGetJobDetailsTool(), handleGetJobDetails(storageManager, composer, logger))
	mcpServer.AddTool(createGetCacheAnalyticsTool(), handleGetCacheAnalytics(storageManager, logger))
	mcpServer.AddTool(createGetJobChangesTool(), handleGetJobChanges(storageManager, logger))

	// Application tracking tools
	mcpServer.AddTool(createMarkJobAppliedTool(), handleMarkJobApplied(storageManager, logger))
	mcpServer.AddTool(createUpdateApplicationStatusTool(), handleUpdateApplicationStatus(storageManager, logger))
	mcpServer.AddTool(createListApplicationsTool(), handleListApplications(storageManager, logger))

	// Profile management tools
	mcpServer.AddTool(createListProfilesTool(), handleListProfiles(storageManager, logger))
	mcpServer.AddTool(createUpsertProfileTool(), handleUpsertProfile(storageManager, logger))
	mcpServer.AddTool(createDeleteProfileTool(), handleDeleteProfile(storageManager, logger))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	switch config.Server.Transport {
	case "sse":
		sseServer := server.NewSSEServer(mcpServer)
		logger.Warn().Str("addr", addr).Msg("Serving MCP over SSE")
		if err := sseServer.Start(addr); err != nil {
			logger.Fatal().Err(err).Msg("MCP server failed")
		}
	case "streamable-http":
		httpServer := server.NewStreamableHTTPServer(mcpServer)
		logger.Warn().Str("addr", addr).Msg("Serving MCP over streamable HTTP")
		if err := httpServer.Start(addr); err != nil {
			logger.Fatal().Err(err).Msg("MCP server failed")
		}
	default:
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal().Err(err).Msg("MCP server failed")
		}
	}
}
