package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeTrackingExhausted = "TRACKING_CODE_GENERATION_FAILED"

	defaultTrackingPrefix   = "TRK-"
	defaultTrackingAttempts = 5
	trackingSuffixLength    = 8
)

// TrackingCodeChecker probes storage for an existing tracking code.
type TrackingCodeChecker interface {
	ExistsByTrackingCode(ctx context.Context, code string) (bool, error)
}

// TrackingCodeGenerator produces prefixed codes with an 8 character uppercase suffix.
// The existence probe is best effort; the unique constraint on the column is the
// final guard.
type TrackingCodeGenerator struct {
	checker     TrackingCodeChecker
	prefix      string
	maxAttempts int
	suffix      func() string
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewTrackingCodeGenerator builds a generator. Empty prefix or non-positive attempts
// fall back to TRK- and 5.
func NewTrackingCodeGenerator(checker TrackingCodeChecker, prefix string, maxAttempts int, logger *zap.Logger, metrics *observability.Metrics) *TrackingCodeGenerator {
	if prefix == "" {
		prefix = defaultTrackingPrefix
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultTrackingAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingCodeGenerator{
		checker:     checker,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		suffix:      randomSuffix,
		logger:      logger,
		metrics:     metrics,
	}
}

// Generate returns a code not currently present in storage. It does not reserve it.
func (g *TrackingCodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code := g.prefix + g.suffix()
		exists, err := g.checker.ExistsByTrackingCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("probe tracking code: %w", err)
		}
		if !exists {
			return code, nil
		}
		g.metrics.TrackingCodeCollision()
		g.logger.Warn("tracking code collision",
			zap.String("code", code),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxAttempts))
	}
	g.metrics.TrackingCodeExhausted()
	return "", errorutil.NewExhausted(CodeTrackingExhausted, "could not generate a unique tracking code")
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:trackingSuffixLength])
}
