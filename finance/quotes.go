// Package finance resolves finance-quote intents: ticker extraction from
// free text and rendering a quote answer from a quote source. The demo
// source serves a fixed in-process price table; a real transport would
// implement QuoteSource.
package finance

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sage-x-project/chat-router/logger"
)

// ErrPriceUnavailable signals that the source has no price for a symbol,
// as opposed to the source itself being unreachable.
var ErrPriceUnavailable = errors.New("finance: no price for symbol")

var symbolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:price|quote)\s+(?:for|of)\s+([A-Za-z]{1,5})\b`),
	regexp.MustCompile(`(?i)\b([A-Za-z]{1,5})\s+(?:stock|share)s?\s+(?:price|quote)\b`),
	regexp.MustCompile(`(?i)\bticker\s+([A-Za-z]{1,5})\b`),
}

// ExtractSymbol returns a likely ticker symbol mentioned in the user text.
// Pure pattern match, no side effects.
func ExtractSymbol(text string) (string, bool) {
	for _, pattern := range symbolPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

// QuoteSource returns the current price for a ticker symbol. A source
// that recognizes the symbol but has no price returns ErrPriceUnavailable.
type QuoteSource interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// MockSource serves a fixed demo price table. Unknown symbols get the
// default price, matching the toy quote server.
type MockSource struct{}

const defaultPrice = 100.00

var mockPrices = map[string]float64{
	"AAPL": 224.52,
	"GOOG": 182.67,
	"TSLA": 207.31,
	"MSFT": 411.15,
}

func (MockSource) Price(_ context.Context, symbol string) (float64, error) {
	if price, ok := mockPrices[strings.ToUpper(symbol)]; ok {
		return price, nil
	}
	return defaultPrice, nil
}

// Service turns a finance-quote utterance into a natural language answer.
type Service struct {
	source QuoteSource
	log    *logger.Logger
}

// NewService builds a quote service. A nil source falls back to MockSource.
func NewService(source QuoteSource, log *logger.Logger) *Service {
	if source == nil {
		source = MockSource{}
	}
	return &Service{source: source, log: log.WithComponent("finance")}
}

// RenderQuote answers a quote request, degrading to apology text when the
// symbol is missing or the source is unreachable.
func (s *Service) RenderQuote(ctx context.Context, text string) string {
	symbol, ok := ExtractSymbol(text)
	if !ok {
		return "I couldn't spot a ticker symbol in that request."
	}

	price, err := s.source.Price(ctx, symbol)
	if errors.Is(err, ErrPriceUnavailable) {
		return fmt.Sprintf("I couldn't find a price for %s.", symbol)
	}
	if err != nil {
		s.log.Warnf("failed to retrieve quote for %s: %v", symbol, err)
		return "Sorry, I couldn't reach the finance quote service right now."
	}

	return fmt.Sprintf("Mock quote for %s: $%.2f.", symbol, price)
}
