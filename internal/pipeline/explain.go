package pipeline

import "fmt"

// Explain returns a human-readable summary of how the result was produced,
// keyed by method. Intended for direct display in the client UI.
func Explain(result *CompositeResult) string {
	switch result.Method {
	case MethodRemote:
		return fmt.Sprintf(
			"Your try-on preview was generated by our AI compositor (quality %.1f/10).",
			result.QualityScore)
	case MethodFallback:
		return fmt.Sprintf(
			"The AI compositor was unavailable (%s), so this preview was rendered locally with simulated draping (quality %.1f/10).",
			result.FallbackReason, result.QualityScore)
	case MethodPlaceholder:
		return fmt.Sprintf(
			"We couldn't generate a preview this time (%s). Please try again shortly.",
			result.FallbackReason)
	default:
		return "Unknown compositing method."
	}
}

// ImprovementSuggestions returns actionable tips for getting a better
// result. The list is non-empty exactly when the result is degraded: the
// method is not remote, or the quality score fell below 8.
func ImprovementSuggestions(result *CompositeResult) []string {
	if result.Method == MethodRemote && result.QualityScore >= 8 {
		return nil
	}

	suggestions := []string{
		"use higher-resolution, well-lit photos",
		"photograph the garment flat on a plain light background",
	}
	switch result.Method {
	case MethodFallback:
		suggestions = append(suggestions, "retry later for an AI-generated preview")
	case MethodPlaceholder:
		suggestions = append(suggestions,
			"check that both photos are valid JPEG or PNG images between 50 KB and 10 MB",
			"retry in a few minutes")
	}
	return suggestions
}
