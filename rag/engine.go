// Package rag exposes the retrieval-query collaborator contract consumed
// by the routing orchestrator, plus a document-grounded engine that
// answers questions from a directory of text files. Chunk selection is a
// simple term-overlap ranking; the generated answer is grounded in the
// selected chunks by the completion model.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sage-x-project/chat-router/llm"
	"github.com/sage-x-project/chat-router/logger"
)

// Answer is the generated answer text for one query.
type Answer struct {
	Text string
}

// QueryEngine answers a single question grounded in retrieved context.
type QueryEngine interface {
	Query(ctx context.Context, text string) (Answer, error)
}

// Engine is a QueryEngine over local documents.
type Engine struct {
	client llm.Client
	chunks []chunk
	topK   int
	log    *logger.Logger
}

type chunk struct {
	source string
	text   string
	terms  map[string]struct{}
}

const defaultTopK = 3

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewEngine loads every .txt and .md file under dataDir and indexes its
// paragraphs for retrieval.
func NewEngine(client llm.Client, dataDir string, topK int, log *logger.Logger) (*Engine, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	e := &Engine{
		client: client,
		topK:   topK,
		log:    log.WithComponent("rag"),
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("rag: read data dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dataDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("rag: read %s: %w", entry.Name(), err)
		}
		e.addDocument(entry.Name(), string(data))
	}

	e.log.Infof("indexed %d chunks from %s", len(e.chunks), dataDir)
	return e, nil
}

func (e *Engine) addDocument(source, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		e.chunks = append(e.chunks, chunk{
			source: source,
			text:   para,
			terms:  termSet(para),
		})
	}
}

func termSet(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 2 {
			continue
		}
		terms[w] = struct{}{}
	}
	return terms
}

// Query selects the best-matching chunks and asks the model for an answer
// grounded in them.
func (e *Engine) Query(ctx context.Context, text string) (Answer, error) {
	selected := e.retrieve(text)
	prompt := buildQueryPrompt(selected, text)

	e.log.Debugf("querying with %d context chunks", len(selected))
	out, err := e.client.Invoke(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("rag: generate answer: %w", err)
	}
	return Answer{Text: out}, nil
}

func (e *Engine) retrieve(text string) []chunk {
	query := termSet(text)

	type scored struct {
		chunk chunk
		score int
	}
	ranked := make([]scored, 0, len(e.chunks))
	for _, c := range e.chunks {
		score := 0
		for term := range query {
			if _, ok := c.terms[term]; ok {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{chunk: c, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > e.topK {
		ranked = ranked[:e.topK]
	}
	out := make([]chunk, len(ranked))
	for i, r := range ranked {
		out[i] = r.chunk
	}
	return out
}

func buildQueryPrompt(context []chunk, question string) string {
	var b strings.Builder
	b.WriteString("Context information is below.\n---------------------\n")
	if len(context) == 0 {
		b.WriteString("(no matching documents)\n")
	}
	for _, c := range context {
		b.WriteString(c.text)
		b.WriteString("\n")
	}
	b.WriteString("---------------------\n")
	b.WriteString("Given the context information and not prior knowledge, answer the query ")
	b.WriteString("clearly and concisely. If the context does not contain the answer, say so.\n")
	b.WriteString("Query: ")
	b.WriteString(question)
	b.WriteString("\nAnswer: ")
	return b.String()
}
