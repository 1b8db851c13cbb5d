package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/faultguard/internal/core/domain"
)

// RetryHint is the enhancer's provisional retryability verdict. The
// classifier may override it from stronger signals.
type RetryHint string

const (
	HintNone    RetryHint = ""
	HintRetry   RetryHint = "retry"
	HintNoRetry RetryHint = "no-retry"
)

// EnhancedFault is a fault with best-effort structured hints attached.
type EnhancedFault struct {
	Fault      domain.Fault
	DomainHint domain.FaultType
	RetryHint  RetryHint
	StatusCode int // HTTP-like code found in the message, 0 if none
}

var httpCodeExpr = regexp.MustCompile(`\b([1-5]\d{2})\b`)

// domain keyword sets, checked in order; first hit wins.
var domainHints = []struct {
	hint domain.FaultType
	expr *regexp.Regexp
}{
	{domain.TypePersistence, regexp.MustCompile(`(?i)\brls\b|row.level.security|policy|42501|database|postgres|supabase`)},
	{domain.TypeFileTransfer, regexp.MustCompile(`(?i)upload|download|quota|multipart`)},
	{domain.TypeStreaming, regexp.MustCompile(`(?i)\bstream|\bsse\b|event.?source|websocket`)},
	{domain.TypeRemoteAPI, regexp.MustCompile(`(?i)fetch|api request|rate limit|\b429\b`)},
	{domain.TypeNetwork, regexp.MustCompile(`(?i)network|timeout|timed out|connection|offline`)},
}

// Enhance attaches structured attributes to a raw error. It is a pure
// transform and never fails: when nothing matches it returns an
// unknown-flavored enhancement.
func Enhance(err error, ctx map[string]string) EnhancedFault {
	f := domain.Fault{
		ID:         uuid.New().String(),
		Context:    ctx,
		Cause:      err,
		CapturedAt: time.Now(),
	}
	if err != nil {
		f.Message = err.Error()
	}
	if ctx != nil {
		f.Component = ctx["component"]
		f.UserID = ctx["user_id"]
		f.SessionID = ctx["session_id"]
		f.Name = ctx["name"]
		f.Stack = ctx["stack"]
	}

	enh := EnhancedFault{Fault: f, DomainHint: domain.TypeUnknown}

	haystack := f.Name + " " + f.Message + " " + f.Stack

	for _, dh := range domainHints {
		if dh.expr.MatchString(haystack) {
			enh.DomainHint = dh.hint
			break
		}
	}

	enh.StatusCode = extractStatusCode(f.Message)
	enh.RetryHint = retryHintForStatus(enh.StatusCode)

	// gRPC status codes carry a stronger signal than substrings.
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
			enh.RetryHint = retryHintForGRPC(st.Code())
		}
	}

	return enh
}

func extractStatusCode(msg string) int {
	m := httpCodeExpr.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil || code < 100 || code > 599 {
		return 0
	}
	return code
}

func retryHintForStatus(code int) RetryHint {
	switch {
	case code == 0:
		return HintNone
	case code == 408 || code == 429 || code >= 500:
		return HintRetry
	case code >= 400:
		return HintNoRetry
	default:
		return HintNone
	}
}

func retryHintForGRPC(code codes.Code) RetryHint {
	switch code {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
		return HintRetry
	case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated,
		codes.FailedPrecondition, codes.NotFound, codes.Unimplemented:
		return HintNoRetry
	default:
		return HintNone
	}
}

var rateLimitExpr = regexp.MustCompile(`(?i)rate.?limit|too many requests|quota exceeded`)

// IsRateLimited reports whether the fault looks like an upstream
// rate-limit response.
func IsRateLimited(enh EnhancedFault) bool {
	if enh.StatusCode == 429 {
		return true
	}
	if st, ok := status.FromError(enh.Fault.Cause); ok && st.Code() == codes.ResourceExhausted {
		return true
	}
	return rateLimitExpr.MatchString(enh.Fault.Message)
}

// haystackFor builds the string the detector table runs over.
func haystackFor(f domain.Fault) string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString(" ")
	b.WriteString(f.Message)
	b.WriteString(" ")
	b.WriteString(f.Stack)
	return b.String()
}
