package policy

import (
	"github.com/vietddude/faultguard/internal/core/domain"
)

// SuggestionsFor generates the ordered recovery action list for a
// classification. The list is never empty: unmatched types fall back
// to a single low-probability generic retry.
func SuggestionsFor(c domain.Classification) []domain.RecoverySuggestion {
	var out []domain.RecoverySuggestion

	switch c.Type {
	case domain.TypeNetwork:
		out = append(out,
			domain.RecoverySuggestion{
				ID: "retry-request", Method: domain.MethodRetry,
				SuccessProbability: 0.7, UIImpact: domain.ImpactLow, Automated: true,
			},
			domain.RecoverySuggestion{
				ID: "check-connection", Method: domain.MethodUserAction,
				SuccessProbability: 0.5, UIImpact: domain.ImpactMedium, Automated: false,
			},
		)
	case domain.TypeRemoteAPI:
		out = append(out,
			domain.RecoverySuggestion{
				ID: "retry-request", Method: domain.MethodRetry,
				SuccessProbability: 0.65, UIImpact: domain.ImpactLow, Automated: true,
			},
			domain.RecoverySuggestion{
				ID: "check-service-status", Method: domain.MethodUserAction,
				SuccessProbability: 0.4, UIImpact: domain.ImpactMedium, Automated: false,
			},
		)
	case domain.TypeDialogue:
		out = append(out,
			domain.RecoverySuggestion{
				ID: "reload-view", Method: domain.MethodReload,
				SuccessProbability: 0.75, UIImpact: domain.ImpactHigh, Automated: false,
			},
			domain.RecoverySuggestion{
				ID: "clear-cache", Method: domain.MethodReset,
				SuccessProbability: 0.55, UIImpact: domain.ImpactMedium, Automated: false,
			},
		)
	case domain.TypePersistence:
		out = append(out,
			domain.RecoverySuggestion{
				ID: "retry-operation", Method: domain.MethodRetry,
				SuccessProbability: 0.6, UIImpact: domain.ImpactLow, Automated: true,
			},
		)
		if c.HasPattern("authentication") || c.HasPattern("authorization") {
			out = append(out, domain.RecoverySuggestion{
				ID: "refresh-auth", Method: domain.MethodUserAction,
				SuccessProbability: 0.65, UIImpact: domain.ImpactMedium, Automated: false,
			})
		}
	case domain.TypeStreaming:
		out = append(out,
			domain.RecoverySuggestion{
				ID: "reconnect-stream", Method: domain.MethodRetry,
				SuccessProbability: 0.7, UIImpact: domain.ImpactLow, Automated: true,
			},
			domain.RecoverySuggestion{
				ID: "fallback-to-polling", Method: domain.MethodFallback,
				SuccessProbability: 0.6, UIImpact: domain.ImpactMedium, Automated: true,
			},
		)
	case domain.TypeFileTransfer:
		out = append(out,
			domain.RecoverySuggestion{
				ID: "retry-transfer", Method: domain.MethodRetry,
				SuccessProbability: 0.6, UIImpact: domain.ImpactLow, Automated: true,
			},
			domain.RecoverySuggestion{
				ID: "validate-file", Method: domain.MethodUserAction,
				SuccessProbability: 0.5, UIImpact: domain.ImpactMedium, Automated: false,
			},
		)
	default:
		out = append(out, domain.RecoverySuggestion{
			ID: "retry-generic", Method: domain.MethodRetry,
			SuccessProbability: 0.3, UIImpact: domain.ImpactLow, Automated: true,
		})
	}

	if !c.Retryable {
		out = stripAutomatedRetries(out)
	}

	if c.Severity == domain.SeverityCritical {
		out = append([]domain.RecoverySuggestion{{
			ID: "emergency-reload", Method: domain.MethodReload,
			SuccessProbability: 0.9, UIImpact: domain.ImpactHigh, Automated: false,
		}}, out...)
	}

	sortSuggestions(out)
	return out
}

// stripAutomatedRetries removes automated retry entries from the list
// and guarantees a user-action escape hatch remains.
func stripAutomatedRetries(in []domain.RecoverySuggestion) []domain.RecoverySuggestion {
	out := in[:0]
	for _, s := range in {
		if s.Method == domain.MethodRetry && s.Automated {
			continue
		}
		out = append(out, s)
	}

	hasUserAction := false
	for _, s := range out {
		if s.Method == domain.MethodUserAction {
			hasUserAction = true
			break
		}
	}
	if !hasUserAction {
		out = append(out, domain.RecoverySuggestion{
			ID: "contact-support", Method: domain.MethodUserAction,
			SuccessProbability: 0.2, UIImpact: domain.ImpactLow, Automated: false,
		})
	}
	return out
}
