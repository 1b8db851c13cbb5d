package classify

import (
	"errors"
	"reflect"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/faultguard/internal/core/domain"
)

func TestClassifyNetworkTimeout(t *testing.T) {
	enh := Enhance(errors.New("Failed to fetch: network timeout"), nil)
	c := Classify(enh)

	if c.Type != domain.TypeNetwork && c.Type != domain.TypeStreaming {
		t.Errorf("type = %s, want network or streaming", c.Type)
	}
	if !c.Retryable {
		t.Error("expected retryable")
	}
	if c.Severity != domain.SeverityMedium {
		t.Errorf("severity = %s, want medium", c.Severity)
	}
}

func TestClassifyRLSViolation(t *testing.T) {
	enh := Enhance(errors.New("403 Forbidden: row level security policy violation"), nil)
	c := Classify(enh)

	if c.Type != domain.TypePersistence {
		t.Errorf("type = %s, want persistence", c.Type)
	}
	if c.Category != domain.CategorySecurity {
		t.Errorf("category = %s, want security", c.Category)
	}
	if c.Retryable {
		t.Error("expected not retryable")
	}
}

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		ctx       map[string]string
		wantType  domain.FaultType
		wantSev   domain.Severity
		wantRetry bool
	}{
		{
			name:      "chunk load failure is critical dialogue",
			msg:       "ChunkLoadError: Loading chunk 42 failed",
			wantType:  domain.TypeDialogue,
			wantSev:   domain.SeverityCritical,
			wantRetry: true,
		},
		{
			name:      "out of memory is critical",
			msg:       "allocation failed: JavaScript heap out of memory",
			wantType:  domain.TypeUnknown,
			wantSev:   domain.SeverityCritical,
			wantRetry: false,
		},
		{
			name:      "database deadlock retries",
			msg:       "transaction aborted: deadlock detected in postgres",
			wantType:  domain.TypePersistence,
			wantSev:   domain.SeverityHigh,
			wantRetry: true,
		},
		{
			name:      "validation never retries",
			msg:       "validation error: required field missing",
			wantType:  domain.TypeUnknown,
			wantSev:   domain.SeverityMedium,
			wantRetry: false,
		},
		{
			name:      "context domain overrides pattern",
			msg:       "network timeout during save",
			ctx:       map[string]string{"domain": "persistence"},
			wantType:  domain.TypePersistence,
			wantSev:   domain.SeverityMedium,
			wantRetry: true,
		},
		{
			name:      "upload quota maps to file transfer",
			msg:       "upload rejected: storage quota exceeded",
			wantType:  domain.TypeFileTransfer,
			wantSev:   domain.SeverityLow,
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(Enhance(errors.New(tt.msg), tt.ctx))
			if c.Type != tt.wantType {
				t.Errorf("type = %s, want %s", c.Type, tt.wantType)
			}
			if c.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s", c.Severity, tt.wantSev)
			}
			if c.Retryable != tt.wantRetry {
				t.Errorf("retryable = %v, want %v", c.Retryable, tt.wantRetry)
			}
		})
	}
}

func TestClassifyAuthWithIdentityIsCritical(t *testing.T) {
	ctx := map[string]string{"user_id": "u-123"}
	c := Classify(Enhance(errors.New("authentication failed: token expired"), ctx))
	if c.Severity != domain.SeverityCritical {
		t.Errorf("severity = %s, want critical", c.Severity)
	}
	if c.Retryable {
		t.Error("auth faults must not retry")
	}
}

func TestClassifyDeterminism(t *testing.T) {
	err := errors.New("Failed to fetch: network timeout")
	ctx := map[string]string{"component": "chat"}

	a := Classify(Enhance(err, ctx))
	b := Classify(Enhance(err, ctx))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("classification not deterministic: %+v vs %+v", a, b)
	}
}

func TestConfidenceScoring(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want float64
	}{
		// base 0.5 only
		{"no patterns", "something inexplicable happened", 0.5},
		// network + xhr: 0.5 + 0.2 + 0.15
		{"related network patterns", "network error in XMLHttpRequest", 0.85},
		// chunk-loading strong single: 0.5 + 0.1 + 0.2
		{"strong chunk match", "Loading chunk 3 failed", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(Enhance(errors.New(tt.msg), nil))
			if diff := c.Confidence - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence = %v, want %v (matched %v)", c.Confidence, tt.want, c.MatchedPatterns)
			}
		})
	}
}

func TestConfidenceCapped(t *testing.T) {
	msg := "postgres database insert failed: connection timeout on network stream during upload validation"
	c := Classify(Enhance(errors.New(msg), nil))
	if c.Confidence > 1.0 {
		t.Errorf("confidence = %v, want <= 1.0", c.Confidence)
	}
}

func TestEnhanceStatusCodes(t *testing.T) {
	tests := []struct {
		msg  string
		want RetryHint
	}{
		{"server returned 503 Service Unavailable", HintRetry},
		{"request failed with 429 Too Many Requests", HintRetry},
		{"timeout 408 waiting for response", HintRetry},
		{"got 404 Not Found", HintNoRetry},
		{"bad request 400", HintNoRetry},
		{"no code here", HintNone},
	}

	for _, tt := range tests {
		enh := Enhance(errors.New(tt.msg), nil)
		if enh.RetryHint != tt.want {
			t.Errorf("Enhance(%q).RetryHint = %q, want %q", tt.msg, enh.RetryHint, tt.want)
		}
	}
}

func TestEnhanceGRPCStatus(t *testing.T) {
	tests := []struct {
		code codes.Code
		want RetryHint
	}{
		{codes.Unavailable, HintRetry},
		{codes.ResourceExhausted, HintRetry},
		{codes.PermissionDenied, HintNoRetry},
		{codes.InvalidArgument, HintNoRetry},
	}

	for _, tt := range tests {
		err := status.Error(tt.code, "upstream says no")
		enh := Enhance(err, nil)
		if enh.RetryHint != tt.want {
			t.Errorf("Enhance(%v).RetryHint = %q, want %q", tt.code, enh.RetryHint, tt.want)
		}
	}
}

func TestEnhanceNeverFails(t *testing.T) {
	enh := Enhance(nil, nil)
	if enh.DomainHint != domain.TypeUnknown {
		t.Errorf("DomainHint = %s, want unknown", enh.DomainHint)
	}
	if enh.Fault.ID == "" {
		t.Error("fault ID must be assigned")
	}
}
