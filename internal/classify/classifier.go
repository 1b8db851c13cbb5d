package classify

import (
	"github.com/vietddude/faultguard/internal/core/domain"
)

const (
	baseConfidence       = 0.5
	perPatternConfidence = 0.1
	strongPatternBonus   = 0.2
	relatedPatternsBonus = 0.15
	maxConfidence        = 1.0
)

// typePrecedence maps detector tags to fault types. Earlier entries win
// when several domains matched.
var typePrecedence = []struct {
	tags []string
	typ  domain.FaultType
}{
	{[]string{PatternDatabase, PatternDatabaseOperation}, domain.TypePersistence},
	{[]string{PatternFileOperation, PatternFileValidation}, domain.TypeFileTransfer},
	{[]string{PatternStreaming, PatternConnection}, domain.TypeStreaming},
	{[]string{PatternNetwork, PatternXHR}, domain.TypeNetwork},
	{[]string{PatternChunkLoading, PatternReactRender, PatternHydration}, domain.TypeDialogue},
}

// Classify derives a full classification from an enhanced fault.
// Total function: deterministic for identical input, no I/O.
func Classify(enh EnhancedFault) domain.Classification {
	matched := MatchPatterns(haystackFor(enh.Fault))

	c := domain.Classification{
		Type:            deriveType(enh, matched),
		MatchedPatterns: matched,
	}
	c.Category = deriveCategory(matched)
	c.Severity = deriveSeverity(enh.Fault, matched)
	c.Retryable = deriveRetryable(enh, matched)
	c.Confidence = deriveConfidence(matched)
	return c
}

// deriveType: context overrides pattern, pattern overrides message
// substrings (the enhancer's domain hint), default unknown.
func deriveType(enh EnhancedFault, matched []string) domain.FaultType {
	if hint := enh.Fault.ContextValue("domain"); hint != "" {
		switch domain.FaultDomain(hint) {
		case domain.DomainDialogue:
			return domain.TypeDialogue
		case domain.DomainRemoteAPI:
			return domain.TypeRemoteAPI
		case domain.DomainStreaming:
			return domain.TypeStreaming
		case domain.DomainPersistence:
			return domain.TypePersistence
		case domain.DomainFileTransfer:
			return domain.TypeFileTransfer
		}
	}

	for _, tp := range typePrecedence {
		for _, tag := range tp.tags {
			if contains(matched, tag) {
				return tp.typ
			}
		}
	}

	if enh.DomainHint != domain.TypeUnknown {
		return enh.DomainHint
	}
	return domain.TypeUnknown
}

func deriveCategory(matched []string) domain.Category {
	switch {
	case contains(matched, PatternAuthentication) || contains(matched, PatternAuthorization):
		return domain.CategorySecurity
	case contains(matched, PatternMemory) || contains(matched, PatternPerformance):
		return domain.CategoryPerformance
	case contains(matched, PatternValidation) || contains(matched, PatternTypeValidation) ||
		contains(matched, PatternFileValidation):
		return domain.CategoryCompatibility
	default:
		return domain.CategoryFunctional
	}
}

func deriveSeverity(f domain.Fault, matched []string) domain.Severity {
	switch {
	case contains(matched, PatternChunkLoading),
		contains(matched, PatternMemory),
		contains(matched, PatternAuthentication) && f.UserID != "":
		return domain.SeverityCritical
	case contains(matched, PatternDatabase),
		contains(matched, PatternDatabaseOperation),
		contains(matched, PatternAuthorization):
		return domain.SeverityHigh
	case contains(matched, PatternNetwork),
		contains(matched, PatternConnection),
		contains(matched, PatternPerformance),
		contains(matched, PatternValidation):
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func deriveRetryable(enh EnhancedFault, matched []string) bool {
	// Auth and validation faults never retry, regardless of hints.
	if contains(matched, PatternAuthentication) ||
		contains(matched, PatternAuthorization) ||
		contains(matched, PatternValidation) ||
		contains(matched, PatternTypeValidation) {
		return false
	}

	if contains(matched, PatternNetwork) ||
		contains(matched, PatternConnection) ||
		contains(matched, PatternChunkLoading) ||
		contains(matched, PatternDatabaseOperation) ||
		contains(matched, PatternStreaming) {
		return true
	}

	switch enh.RetryHint {
	case HintRetry:
		return true
	case HintNoRetry:
		return false
	}

	if v := enh.Fault.ContextValue("retryable"); v != "" {
		return v == "true"
	}
	return false
}

func deriveConfidence(matched []string) float64 {
	conf := baseConfidence + perPatternConfidence*float64(len(matched))

	for _, rule := range DetectorTable {
		if rule.Strong && contains(matched, rule.Tag) {
			conf += strongPatternBonus
			break
		}
	}

	if contains(matched, PatternNetwork) && contains(matched, PatternXHR) {
		conf += relatedPatternsBonus
	}

	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
