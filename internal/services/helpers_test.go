package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

func ptr[T any](v T) *T { return &v }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func testReservations(t *testing.T) (*cache.CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCacheHelper(client, cache.ReservationCacheConfig.Prefix), mr
}

// fixture wires every service over one in-memory store.
type fixture struct {
	store       *memStore
	publisher   *events.MockEventPublisher
	metrics     *metrics.Metrics
	roles       *RoleRegistry
	minter      *IdentifierMinter
	profiles    *profileService
	enrollment  *enrollmentService
	certificate *certificateService
	deletion    *deletionOrchestrator
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	logger := testLogger()
	v := validator.New()
	m := testMetrics()
	publisher := events.NewMockEventPublisher(logger)
	reservations, _ := testReservations(t)

	roles := NewRoleRegistry(store.Role(), logger)
	minter := NewIdentifierMinter(store.Certificate(), reservations, m, logger)
	profiles := NewProfileService(store, roles, m, logger, v).(*profileService)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	enrollment := NewEnrollmentService(store, profiles, publisher, m, logger, v).(*enrollmentService)
	enrollment.now = func() time.Time { return now }
	certificate := NewCertificateService(store, minter, publisher, m, logger, v).(*certificateService)
	certificate.now = func() time.Time { return now }

	return &fixture{
		store:       store,
		publisher:   publisher,
		metrics:     m,
		roles:       roles,
		minter:      minter,
		profiles:    profiles,
		enrollment:  enrollment,
		certificate: certificate,
		deletion:    NewDeletionOrchestrator(store, roles, m, logger, v).(*deletionOrchestrator),
		now:         now,
	}
}
