package pipeline

import (
	"strings"
	"testing"
)

func TestExplainPerMethod(t *testing.T) {
	tests := []struct {
		name   string
		result CompositeResult
		want   string
	}{
		{
			"remote",
			CompositeResult{Method: MethodRemote, QualityScore: scoreRemote},
			"AI compositor",
		},
		{
			"fallback",
			CompositeResult{Method: MethodFallback, QualityScore: scoreFallback, FallbackReason: "remote compositing failed: timeout"},
			"rendered locally",
		},
		{
			"placeholder",
			CompositeResult{Method: MethodPlaceholder, QualityScore: scorePlaceholder, FallbackReason: "validation failed"},
			"try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(&tt.result)
			if got == "" {
				t.Fatal("explanation is empty")
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Explain() = %q, want substring %q", got, tt.want)
			}
			if tt.result.FallbackReason != "" && !strings.Contains(got, tt.result.FallbackReason) {
				t.Errorf("Explain() = %q does not surface reason %q", got, tt.result.FallbackReason)
			}
		})
	}
}

func TestImprovementSuggestions(t *testing.T) {
	remote := CompositeResult{Method: MethodRemote, QualityScore: scoreRemote}
	if got := ImprovementSuggestions(&remote); len(got) != 0 {
		t.Errorf("high-quality remote result got suggestions: %v", got)
	}

	lowRemote := CompositeResult{Method: MethodRemote, QualityScore: 7.0}
	if got := ImprovementSuggestions(&lowRemote); len(got) == 0 {
		t.Error("low-scoring remote result should get suggestions")
	}

	fallback := CompositeResult{Method: MethodFallback, QualityScore: scoreFallback}
	if got := ImprovementSuggestions(&fallback); len(got) == 0 {
		t.Error("fallback result should get suggestions")
	}

	placeholder := CompositeResult{Method: MethodPlaceholder, QualityScore: scorePlaceholder}
	got := ImprovementSuggestions(&placeholder)
	if len(got) == 0 {
		t.Fatal("placeholder result should get suggestions")
	}
	joined := strings.Join(got, "; ")
	if !strings.Contains(joined, "retry") {
		t.Errorf("placeholder suggestions %q missing a retry hint", joined)
	}
}
