package domain

// FaultType is the classified origin of a fault.
type FaultType string

const (
	TypeDialogue     FaultType = "dialogue"
	TypeRemoteAPI    FaultType = "remote-api"
	TypeStreaming    FaultType = "streaming"
	TypePersistence  FaultType = "persistence"
	TypeFileTransfer FaultType = "file-transfer"
	TypeNetwork      FaultType = "network"
	TypeUnknown      FaultType = "unknown"
)

// Category tags the kind of impact a fault has.
type Category string

const (
	CategoryFunctional    Category = "functional"
	CategoryPerformance   Category = "performance"
	CategorySecurity      Category = "security"
	CategoryAccessibility Category = "accessibility"
	CategoryCompatibility Category = "compatibility"
)

// Severity ranks how urgent a fault is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Classification is the derived view of a fault. Computed once per
// fault instance, never mutated after creation.
type Classification struct {
	Type            FaultType `json:"type"`
	Category        Category  `json:"category"`
	Severity        Severity  `json:"severity"`
	Retryable       bool      `json:"retryable"`
	MatchedPatterns []string  `json:"matched_patterns"`
	Confidence      float64   `json:"confidence"`
}

// HasPattern reports whether the given detector tag matched.
func (c Classification) HasPattern(tag string) bool {
	for _, p := range c.MatchedPatterns {
		if p == tag {
			return true
		}
	}
	return false
}
