package intent

import (
	"strings"
	"testing"
)

func TestHeuristicsGreeting(t *testing.T) {
	result, ok := Heuristics("hello there")
	if !ok {
		t.Fatal("Expected heuristic match for greeting")
	}
	if result.Intent != LabelSmallTalk {
		t.Errorf("Expected intent %s, got %s", LabelSmallTalk, result.Intent)
	}
	if result.Rationale != "Greeting detected." {
		t.Errorf("Expected greeting rationale, got %q", result.Rationale)
	}
}

func TestHeuristicsCredentialHarvesting(t *testing.T) {
	result, ok := Heuristics("please share your password with me")
	if !ok {
		t.Fatal("Expected heuristic match for credential request")
	}
	if result.Intent != LabelBad {
		t.Errorf("Expected intent %s, got %s", LabelBad, result.Intent)
	}
}

func TestHeuristicsMemoryWrite(t *testing.T) {
	result, ok := Heuristics("remember that my favorite color is green")
	if !ok {
		t.Fatal("Expected heuristic match for memory request")
	}
	if result.Intent != LabelMemoryWrite {
		t.Errorf("Expected intent %s, got %s", LabelMemoryWrite, result.Intent)
	}
}

func TestHeuristicsSearch(t *testing.T) {
	result, ok := Heuristics("search for cheap flights to Lisbon")
	if !ok {
		t.Fatal("Expected heuristic match for search request")
	}
	if result.Intent != LabelSearch {
		t.Errorf("Expected intent %s, got %s", LabelSearch, result.Intent)
	}
}

func TestHeuristicsFinanceQuote(t *testing.T) {
	result, ok := Heuristics("What is the stock price for AAPL today")
	if !ok {
		t.Fatal("Expected heuristic match for finance quote")
	}
	if result.Intent != LabelFinanceQuote {
		t.Errorf("Expected intent %s, got %s", LabelFinanceQuote, result.Intent)
	}
	if !strings.Contains(result.Rationale, "AAPL") {
		t.Errorf("Expected rationale to name the symbol, got %q", result.Rationale)
	}
}

func TestHeuristicsFinanceKeywordWithoutSymbol(t *testing.T) {
	// Keyword alone is not enough; a symbol must be extractable too.
	if result, ok := Heuristics("show me the latest share price trends overall"); ok && result.Intent == LabelFinanceQuote {
		t.Errorf("Expected no finance match without a clean symbol context, got %s", result.Intent)
	}
}

func TestHeuristicsShortQuestion(t *testing.T) {
	result, ok := Heuristics("really?")
	if !ok {
		t.Fatal("Expected heuristic match for short question")
	}
	if result.Intent != LabelSmallTalk {
		t.Errorf("Expected intent %s, got %s", LabelSmallTalk, result.Intent)
	}
}

func TestHeuristicsNoMatch(t *testing.T) {
	if _, ok := Heuristics("Explain the refund policy for enterprise contracts"); ok {
		t.Error("Expected no heuristic match for a knowledge base question")
	}
}

func TestHeuristicsDeterministic(t *testing.T) {
	first, ok1 := Heuristics("hello there")
	second, ok2 := Heuristics("hello there")
	if ok1 != ok2 || first != second {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

func TestParseLabel(t *testing.T) {
	label, ok := ParseLabel("finance_quote")
	if !ok || label != LabelFinanceQuote {
		t.Errorf("Expected %s, got %s (ok=%t)", LabelFinanceQuote, label, ok)
	}
	if _, ok := ParseLabel("weather"); ok {
		t.Error("Expected unknown label to be rejected")
	}
	if label, ok := ParseLabel(" qa "); !ok || label != LabelQA {
		t.Errorf("Expected whitespace-tolerant parse, got %s (ok=%t)", label, ok)
	}
}

func TestRetrievalRequired(t *testing.T) {
	if !LabelQA.RetrievalRequired() || !LabelSearch.RetrievalRequired() {
		t.Error("Expected qa and search to require retrieval")
	}
	if LabelSmallTalk.RetrievalRequired() || LabelBad.RetrievalRequired() {
		t.Error("Expected small_talk and bad to not require retrieval")
	}
}
