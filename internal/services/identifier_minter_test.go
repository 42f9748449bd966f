package services

import (
	"bytes"
	"context"
	"errors"
	mrand "math/rand/v2"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pgregory.net/rapid"

	"github.com/SAP-F-2025/training-service/internal/cache"
)

type stubChecker struct {
	taken map[string]bool
	err   error
	calls int
}

func (c *stubChecker) ExistsByNumber(ctx context.Context, tx *gorm.DB, number string, excludeID *uint) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.taken[number], nil
}

// zeroReader makes crypto/rand.Int return 0 on every draw.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestIdentifierMinter_GeneratesPaddedDigits(t *testing.T) {
	minter := NewIdentifierMinter(&stubChecker{}, cache.NewCacheHelper(nil, "reserve:"), testMetrics(), testLogger(),
		WithRandomSource(zeroReader{}), WithNumberLength(8))

	number, err := minter.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "00000000", number)
}

func TestIdentifierMinter_RetriesOnCollision(t *testing.T) {
	checker := &stubChecker{taken: map[string]bool{"0000000000": true}}
	// The first draw reads zeros, later draws do not.
	source := bytes.NewReader(append(make([]byte, 8), bytes.Repeat([]byte{0x01}, 64)...))
	minter := NewIdentifierMinter(checker, cache.NewCacheHelper(nil, "reserve:"), testMetrics(), testLogger(),
		WithRandomSource(source))

	number, err := minter.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, "0000000000", number)
	assert.Equal(t, 2, checker.calls)
}

func TestIdentifierMinter_ExhaustionIsStoreUnavailable(t *testing.T) {
	checker := &stubChecker{taken: map[string]bool{"0000000000": true}}
	minter := NewIdentifierMinter(checker, cache.NewCacheHelper(nil, "reserve:"), testMetrics(), testLogger(),
		WithRandomSource(zeroReader{}), WithMaxAttempts(3))

	_, err := minter.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 3, checker.calls)
}

func TestIdentifierMinter_ReservationBlocksConcurrentMint(t *testing.T) {
	reservations, mr := testReservations(t)
	require.NoError(t, mr.Set("reserve:certificate:0000000000", "1"))

	checker := &stubChecker{}
	minter := NewIdentifierMinter(checker, reservations, testMetrics(), testLogger(),
		WithRandomSource(zeroReader{}), WithMaxAttempts(2))

	_, err := minter.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Zero(t, checker.calls, "reserved candidates never reach the store")
}

func TestIdentifierMinter_ReservationOutageFallsBackToStore(t *testing.T) {
	reservations, mr := testReservations(t)
	mr.Close()

	checker := &stubChecker{}
	minter := NewIdentifierMinter(checker, reservations, testMetrics(), testLogger())

	number, err := minter.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, number, DefaultCertificateNumberLength)
	assert.Equal(t, 1, checker.calls)
}

func TestIdentifierMinter_CheckerFailure(t *testing.T) {
	minter := NewIdentifierMinter(&stubChecker{err: errors.New("db down")}, cache.NewCacheHelper(nil, "reserve:"), testMetrics(), testLogger())

	_, err := minter.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestIdentifierMinter_NumbersAreFixedWidthDigits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(4, 18).Draw(t, "length")
		var seed [32]byte
		copy(seed[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "seed"))

		minter := NewIdentifierMinter(&stubChecker{}, cache.NewCacheHelper(nil, "reserve:"), nil, testLogger(),
			WithRandomSource(mrand.NewChaCha8(seed)), WithNumberLength(length))

		number, err := minter.Generate(context.Background(), nil)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !regexp.MustCompile(`^[0-9]+$`).MatchString(number) || len(number) != length {
			t.Fatalf("number %q is not %d digits", number, length)
		}
	})
}
