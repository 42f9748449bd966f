package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/metrics"
)

const (
	DefaultCertificateNumberLength = 10
	DefaultMintMaxAttempts         = 5
)

// NumberChecker reports whether a certificate number is already taken.
type NumberChecker interface {
	ExistsByNumber(ctx context.Context, tx *gorm.DB, number string, excludeID *uint) (bool, error)
}

// IdentifierMinter produces certificate numbers that are unique at the time
// of minting. The store's unique constraint stays the final arbiter.
type IdentifierMinter struct {
	checker      NumberChecker
	reservations *cache.CacheHelper
	random       io.Reader
	length       int
	maxAttempts  int
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type MinterOption func(*IdentifierMinter)

// WithRandomSource replaces crypto/rand, mainly for tests.
func WithRandomSource(r io.Reader) MinterOption {
	return func(m *IdentifierMinter) { m.random = r }
}

func WithMaxAttempts(n int) MinterOption {
	return func(m *IdentifierMinter) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

func WithNumberLength(n int) MinterOption {
	return func(m *IdentifierMinter) {
		if n > 0 && n <= 18 {
			m.length = n
		}
	}
}

func NewIdentifierMinter(checker NumberChecker, reservations *cache.CacheHelper, m *metrics.Metrics, logger *slog.Logger, opts ...MinterOption) *IdentifierMinter {
	minter := &IdentifierMinter{
		checker:      checker,
		reservations: reservations,
		random:       rand.Reader,
		length:       DefaultCertificateNumberLength,
		maxAttempts:  DefaultMintMaxAttempts,
		metrics:      m,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(minter)
	}
	return minter
}

func (m *IdentifierMinter) MaxAttempts() int {
	return m.maxAttempts
}

// Generate returns a number not present in the store as seen by tx. It gives
// up with StoreUnavailable after MaxAttempts collisions.
func (m *IdentifierMinter) Generate(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		candidate, err := m.candidate()
		if err != nil {
			return "", &StoreError{Op: "generate certificate number", Err: err}
		}

		free, err := m.claim(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}

		m.metrics.IncrementIdentifierCollisions()
		m.logger.WarnContext(ctx, "Certificate number collision", "attempt", attempt)
	}

	return "", &StoreError{
		Op:  "generate certificate number",
		Err: fmt.Errorf("no free number after %d attempts", m.maxAttempts),
	}
}

func (m *IdentifierMinter) claim(ctx context.Context, tx *gorm.DB, candidate string) (bool, error) {
	reserved, err := m.reservations.Reserve(ctx, "certificate:"+candidate, cache.ReservationCacheConfig.TTL)
	if err != nil {
		// Reservation is an optimisation; the store check below still holds.
		m.logger.WarnContext(ctx, "Certificate number reservation failed", "error", err)
		reserved = true
	}
	if !reserved {
		return false, nil
	}

	exists, err := m.checker.ExistsByNumber(ctx, tx, candidate, nil)
	if err != nil {
		return false, storeErr("check certificate number", err)
	}
	return !exists, nil
}

func (m *IdentifierMinter) candidate() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m.length)), nil)
	n, err := rand.Int(m.random, limit)
	if err != nil {
		return "", err
	}

	digits := n.String()
	return strings.Repeat("0", m.length-len(digits)) + digits, nil
}
