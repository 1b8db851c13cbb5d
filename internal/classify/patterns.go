package classify

import "regexp"

// Detector tags. The classifier derives type, category, severity and
// retryability from which of these matched.
const (
	PatternNetwork           = "network"
	PatternXHR               = "xhr"
	PatternChunkLoading      = "chunk-loading"
	PatternReactRender       = "react-render"
	PatternHydration         = "hydration"
	PatternDatabase          = "database"
	PatternDatabaseOperation = "database-operation"
	PatternFileOperation     = "file-operation"
	PatternFileValidation    = "file-validation"
	PatternAuthentication    = "authentication"
	PatternAuthorization     = "authorization"
	PatternStreaming         = "streaming"
	PatternConnection        = "connection"
	PatternMemory            = "memory"
	PatternPerformance       = "performance"
	PatternValidation        = "validation"
	PatternTypeValidation    = "type-validation"
)

// PatternRule binds one detector tag to its regex. The table is the
// classification heuristic itself, kept as data so it stays testable
// independent of the rest of the pipeline.
type PatternRule struct {
	Tag    string
	Expr   *regexp.Regexp
	Strong bool // grants a confidence bonus when matched
}

// DetectorTable is the ordered detector set run over name+message+stack.
var DetectorTable = []PatternRule{
	{Tag: PatternNetwork, Expr: regexp.MustCompile(`(?i)failed to fetch|network|fetch|ERR_INTERNET|ERR_NETWORK`)},
	{Tag: PatternXHR, Expr: regexp.MustCompile(`(?i)\bxhr\b|xmlhttprequest|\bajax\b`)},
	{Tag: PatternChunkLoading, Expr: regexp.MustCompile(`(?i)chunkloaderror|loading chunk|chunk load failed`), Strong: true},
	{Tag: PatternReactRender, Expr: regexp.MustCompile(`(?i)invalid hook call|maximum update depth|component stack|react`)},
	{Tag: PatternHydration, Expr: regexp.MustCompile(`(?i)hydrat(?:e|ion)`)},
	{Tag: PatternDatabase, Expr: regexp.MustCompile(`(?i)database|postgres|supabase|\brls\b|row.level.security|policy violation|42501|\bsql\b`), Strong: true},
	{Tag: PatternDatabaseOperation, Expr: regexp.MustCompile(`(?i)insert failed|update failed|delete failed|upsert|query failed|transaction (?:aborted|failed)|deadlock`)},
	{Tag: PatternFileOperation, Expr: regexp.MustCompile(`(?i)upload|download|file transfer|multipart`)},
	{Tag: PatternFileValidation, Expr: regexp.MustCompile(`(?i)file too large|unsupported file|invalid file|mime type|storage quota`)},
	{Tag: PatternAuthentication, Expr: regexp.MustCompile(`(?i)authenticat|\b401\b|jwt|token expired|session expired|login required`)},
	{Tag: PatternAuthorization, Expr: regexp.MustCompile(`(?i)authoriz|forbidden|\b403\b|permission denied|access denied`)},
	{Tag: PatternStreaming, Expr: regexp.MustCompile(`(?i)\bstream|\bsse\b|event.?source|chunked encoding`)},
	{Tag: PatternConnection, Expr: regexp.MustCompile(`(?i)connection|timed?.?out|econnrefused|econnreset|socket|websocket`)},
	{Tag: PatternMemory, Expr: regexp.MustCompile(`(?i)out of memory|\boom\b|heap limit|memory limit|allocation failed`)},
	{Tag: PatternPerformance, Expr: regexp.MustCompile(`(?i)\bslow\b|latency|deadline exceeded|long task`)},
	{Tag: PatternValidation, Expr: regexp.MustCompile(`(?i)validation|invalid input|schema mismatch|required field|constraint`)},
	{Tag: PatternTypeValidation, Expr: regexp.MustCompile(`(?i)typeerror|cannot read propert|undefined is not|is not a function`)},
}

// MatchPatterns runs the detector table over the haystack and returns
// matched tags in table order.
func MatchPatterns(haystack string) []string {
	var matched []string
	for _, rule := range DetectorTable {
		if rule.Expr.MatchString(haystack) {
			matched = append(matched, rule.Tag)
		}
	}
	return matched
}
