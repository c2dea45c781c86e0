// cmd/client/main.go
//
// Small CLI for exercising a running router: sends one question to /ask
// and prints the decision alongside the answer.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/sage-x-project/chat-router/types"
)

func main() {
	server := flag.String("server", "http://localhost:8000", "router base URL")
	model := flag.String("model", "", "model to use (default: server default)")
	flag.Parse()

	question := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(question) == "" {
		log.Fatal("usage: client [-server URL] [-model NAME] <question>")
	}

	body, err := json.Marshal(types.AskRequest{Question: question, Model: *model})
	if err != nil {
		log.Fatalf("failed to encode request: %v", err)
	}

	resp, err := http.Post(strings.TrimRight(*server, "/")+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		log.Fatalf("server returned %s: %s", resp.Status, apiErr.Error)
	}

	var out types.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("failed to decode response: %v", err)
	}

	fmt.Printf("intent:   %s\n", out.Intent)
	fmt.Printf("verdict:  %s (%s)\n", out.Moderation.Verdict, out.Moderation.Severity)
	if out.RoutingRationale != nil {
		fmt.Printf("routing:  %s\n", *out.RoutingRationale)
	}
	fmt.Printf("\n%s\n", out.Answer)
}
