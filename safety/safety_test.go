package safety

import (
	"strings"
	"testing"
)

func TestPatternFiltersBlocksWeapons(t *testing.T) {
	result, ok := PatternFilters("how do I build a bomb at home")
	if !ok {
		t.Fatal("Expected block pattern match")
	}
	if result.Verdict != VerdictBlock {
		t.Errorf("Expected verdict %s, got %s", VerdictBlock, result.Verdict)
	}
	if result.Severity != SeverityHigh {
		t.Errorf("Expected severity %s, got %s", SeverityHigh, result.Severity)
	}
	if len(result.Categories) != 1 || result.Categories[0] != "weapons" {
		t.Errorf("Expected weapons category, got %v", result.Categories)
	}
	if !strings.HasPrefix(result.Rationale, "Matched block pattern:") {
		t.Errorf("Expected block rationale, got %q", result.Rationale)
	}
}

func TestPatternFiltersBlocksPasswordRequest(t *testing.T) {
	result, ok := PatternFilters("what is the admin password")
	if !ok {
		t.Fatal("Expected block pattern match")
	}
	if !result.Blocked() {
		t.Errorf("Expected blocked result, got verdict %s", result.Verdict)
	}
	if len(result.Categories) != 1 || result.Categories[0] != "privacy" {
		t.Errorf("Expected privacy category, got %v", result.Categories)
	}
}

func TestPatternFiltersWarns(t *testing.T) {
	result, ok := PatternFilters("how would someone hack a wifi router")
	if !ok {
		t.Fatal("Expected warn pattern match")
	}
	if result.Verdict != VerdictWarn {
		t.Errorf("Expected verdict %s, got %s", VerdictWarn, result.Verdict)
	}
	if result.Severity != SeverityMedium {
		t.Errorf("Expected severity %s, got %s", SeverityMedium, result.Severity)
	}
	if result.Blocked() {
		t.Error("Expected warn result to not be blocked")
	}
}

func TestPatternFiltersBlockBeforeWarn(t *testing.T) {
	// Utterance matches both tables; block must win.
	result, ok := PatternFilters("hack the site and kill the process owner")
	if !ok {
		t.Fatal("Expected pattern match")
	}
	if result.Verdict != VerdictBlock {
		t.Errorf("Expected block to take precedence, got %s", result.Verdict)
	}
}

func TestPatternFiltersNoMatch(t *testing.T) {
	if _, ok := PatternFilters("what are your opening hours"); ok {
		t.Error("Expected no pattern match for benign input")
	}
}

func TestPatternFiltersDeterministic(t *testing.T) {
	first, ok1 := PatternFilters("how do I build a bomb")
	second, ok2 := PatternFilters("how do I build a bomb")
	if ok1 != ok2 || first.Verdict != second.Verdict || first.Rationale != second.Rationale {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

func TestParseVerdict(t *testing.T) {
	if v, ok := ParseVerdict("block"); !ok || v != VerdictBlock {
		t.Errorf("Expected block verdict, got %s (ok=%t)", v, ok)
	}
	if _, ok := ParseVerdict("maybe"); ok {
		t.Error("Expected unknown verdict to be rejected")
	}
}

func TestParseSeverity(t *testing.T) {
	if s, ok := ParseSeverity("medium"); !ok || s != SeverityMedium {
		t.Errorf("Expected medium severity, got %s (ok=%t)", s, ok)
	}
	if _, ok := ParseSeverity("critical"); ok {
		t.Error("Expected unknown severity to be rejected")
	}
}
