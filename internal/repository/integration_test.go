package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// skipIfNoIntegration skips tests that need a live PostgreSQL unless
// INTEGRATION_TESTS=1 is set.
func skipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("Skipping integration test (set INTEGRATION_TESTS=1 to run)")
	}
}

// getPostgresPool creates a PostgreSQL connection pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	skipIfNoIntegration(t)

	host := envOr("TEST_POSTGRES_HOST", "localhost")
	port := envOr("TEST_POSTGRES_PORT", "5432")
	user := envOr("TEST_POSTGRES_USER", "postgres")
	password := envOr("TEST_POSTGRES_PASSWORD", "postgres")
	dbname := envOr("TEST_POSTGRES_DB", "checkin_test")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	cleanupTestData(t, pool)
	t.Cleanup(func() {
		cleanupTestData(t, pool)
		pool.Close()
	})

	return pool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// cleanupTestData removes rows created by the fixtures below
func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	for _, stmt := range []string{
		`DELETE FROM checkins WHERE attendee_id IN (SELECT id FROM attendees WHERE email LIKE 'it-%@test.local')`,
		`DELETE FROM attendee_events WHERE attendee_id IN (SELECT id FROM attendees WHERE email LIKE 'it-%@test.local')`,
		`DELETE FROM attendees WHERE email LIKE 'it-%@test.local'`,
		`DELETE FROM events WHERE code LIKE 'IT-%'`,
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("Failed to clean up test data: %v", err)
		}
	}
}

// createTestAttendee inserts an attendee fixture and returns its ID
func createTestAttendee(t *testing.T, pool *pgxpool.Pool, qrCode, email string, active bool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO attendees (qr_code, email, full_name, active, created_at, updated_at)
		VALUES (NULLIF($1, ''), $2, 'Integration Test', $3, now(), now())
		RETURNING id
	`, qrCode, email, active).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test attendee: %v", err)
	}
	return id
}

// createTestEvent inserts an event fixture and returns its ID
func createTestEvent(t *testing.T, pool *pgxpool.Pool, code string, active bool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO events (code, name, active)
		VALUES ($1, $1, $2)
		RETURNING id
	`, code, active).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return id
}

// permitTestAttendee authorizes an attendee for an event
func permitTestAttendee(t *testing.T, pool *pgxpool.Pool, attendeeID, eventID int64) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO attendee_events (attendee_id, event_id, permitted)
		VALUES ($1, $2, true)
	`, attendeeID, eventID)
	if err != nil {
		t.Fatalf("Failed to permit test attendee: %v", err)
	}
}

// countCheckins returns the stored record count for a pair
func countCheckins(t *testing.T, pool *pgxpool.Pool, attendeeID, eventID int64) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(), `
		SELECT count(*) FROM checkins WHERE attendee_id = $1 AND event_id = $2
	`, attendeeID, eventID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count check-ins: %v", err)
	}
	return count
}
