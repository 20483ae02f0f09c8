// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaynkorai/research-agents-gograph/agent"
	"github.com/zaynkorai/research-agents-gograph/api"
	"github.com/zaynkorai/research-agents-gograph/search"
)

func main() {
	question := flag.String("q", "", "Research question to answer once; starts the HTTP server when empty")
	configPath := flag.String("config", "", "Optional config file (yaml, json or toml)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := agent.LoadConfiguration(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	model := agent.NewOpenAIChat(&cfg.Run, logger.Named("llm"))
	searcher := search.NewSerper(search.Config{
		APIKey:         cfg.Search.APIKey,
		Endpoint:       cfg.Search.Endpoint,
		RequestsPerSec: cfg.Search.RequestsPerSec,
		Timeout:        cfg.Search.Timeout,
	}, logger.Named("search"))

	workflow, err := agent.NewWorkflow(cfg.Run, agent.NewAgents(model, logger.Named("agent")), searcher, logger.Named("workflow"))
	if err != nil {
		logger.Fatal("Failed to build workflow", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *question != "" {
		workflow.OnEvent = printEvent
		result, err := workflow.Run(ctx, *question)
		if err != nil {
			logger.Fatal("Research run failed", zap.Error(err))
		}
		fmt.Println("\nFinal Answer:")
		fmt.Println(result.Text())
		return
	}

	s := api.NewServer(workflow, logger.Named("api"))
	if err := s.Start(cfg.Server.Port); err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}
}

func newLogger(cfg agent.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

func printEvent(runID string, event agent.Event[agent.Role, agent.State]) {
	msg, _ := event.State.Latest(event.Node.Key())
	event.Node.Color().Printf("[%d] %s: %s\n", event.Step, event.Node, agent.ContentOf(msg))
}
