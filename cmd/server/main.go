// cmd/server/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sage-x-project/chat-router/api"
	"github.com/sage-x-project/chat-router/config"
	"github.com/sage-x-project/chat-router/enginecache"
	"github.com/sage-x-project/chat-router/finance"
	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
	"github.com/sage-x-project/chat-router/rag"
	"github.com/sage-x-project/chat-router/routing"
	"github.com/sage-x-project/chat-router/websocket"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	logLevel := flag.String("log-level", "info", "log level (debug|info|warn|error)")
	jsonLogs := flag.Bool("json-logs", false, "emit logs as JSON")
	flag.Parse()

	log := logger.New()
	if level, err := logger.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetJSONFormat(*jsonLogs)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", err)
		os.Exit(1)
	}

	var httpClient *http.Client
	if cfg.LLM.DebugHTTP {
		httpClient = &http.Client{
			Transport: &llm.DebugTransport{Base: http.DefaultTransport, Log: log.WithComponent("llm-http")},
		}
	}

	engines, err := enginecache.NewEngines(enginecache.Options{
		OllamaURL:  cfg.LLM.OllamaURL,
		GuardModel: cfg.LLM.GuardModel,
		NumCtx:     cfg.LLM.NumCtx,
		Capacity:   cfg.LLM.CacheCapacity,
		HTTPClient: httpClient,
		QueryBuilder: func(client llm.Client) (rag.QueryEngine, error) {
			return rag.NewEngine(client, cfg.RAG.DataDir, cfg.RAG.TopK, log)
		},
	}, log)
	if err != nil {
		log.Error("failed to build engine caches", err)
		os.Exit(1)
	}

	quotes := finance.NewService(nil, log)

	eventStream := websocket.NewLogServer(cfg.Server.WSPort, log)
	if err := eventStream.Start(); err != nil {
		log.Error("failed to start event stream", err)
		os.Exit(1)
	}

	orchestrator := routing.NewOrchestrator(engines, quotes, eventStream, log)

	server := api.NewServer(orchestrator, cfg, log)
	if err := server.Start(); err != nil {
		log.Error("failed to start http server", err)
		os.Exit(1)
	}

	log.Infof("chat router up (http=%d ws=%d model=%s)", cfg.Server.Port, cfg.Server.WSPort, cfg.LLM.DefaultModel)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received %s, shutting down", sig)

	if err := server.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "error stopping http server: %v\n", err)
	}
	if err := eventStream.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "error stopping event stream: %v\n", err)
	}
}
