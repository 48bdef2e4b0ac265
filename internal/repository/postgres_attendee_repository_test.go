package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/eventops/qr-checkin-api/internal/domain"
)

func TestGetByIdentifier(t *testing.T) {
	pool := getPostgresPool(t)
	repo := NewPostgresAttendeeRepository(pool)

	createTestAttendee(t, pool, "IT-DIR-1", "it-dir-1@test.local", true)

	ctx := context.Background()

	byCode, err := repo.GetByIdentifier(ctx, "IT-DIR-1")
	if err != nil {
		t.Fatalf("GetByIdentifier() by code unexpected error = %v", err)
	}
	byEmail, err := repo.GetByIdentifier(ctx, "it-dir-1@test.local")
	if err != nil {
		t.Fatalf("GetByIdentifier() by email unexpected error = %v", err)
	}
	if byCode.ID != byEmail.ID {
		t.Errorf("code and email lookups resolved different attendees: %d vs %d", byCode.ID, byEmail.ID)
	}

	// Identifier matching is exact and case-sensitive.
	if _, err := repo.GetByIdentifier(ctx, "it-dir-1"); !errors.Is(err, domain.ErrAttendeeNotFound) {
		t.Errorf("GetByIdentifier() partial match error = %v, want ErrAttendeeNotFound", err)
	}
}

func TestListPaginationStable(t *testing.T) {
	pool := getPostgresPool(t)
	repo := NewPostgresAttendeeRepository(pool)

	for i := 0; i < 5; i++ {
		createTestAttendee(t, pool, fmt.Sprintf("IT-PAGE-%d", i), fmt.Sprintf("it-page-%d@test.local", i), true)
	}

	ctx := context.Background()
	filter := domain.AttendeeFilter{Query: "it-page-"}

	seen := map[int64]bool{}
	total := 0
	for offset := 0; offset < 6; offset += 2 {
		page, err := repo.List(ctx, filter, domain.Page{Limit: 2, Offset: offset})
		if err != nil {
			t.Fatalf("List() unexpected error = %v", err)
		}
		for _, a := range page {
			if seen[a.ID] {
				t.Errorf("attendee %d returned on more than one page", a.ID)
			}
			seen[a.ID] = true
			total++
		}
	}

	if total != 5 {
		t.Errorf("paginated total = %d, want 5", total)
	}
}

func TestListClampsLimit(t *testing.T) {
	pool := getPostgresPool(t)
	repo := NewPostgresAttendeeRepository(pool)

	// Absurd page parameters must not error; they are clamped.
	if _, err := repo.List(context.Background(), domain.AttendeeFilter{}, domain.Page{Limit: 100000, Offset: -5}); err != nil {
		t.Fatalf("List() with out-of-range page unexpected error = %v", err)
	}
}

func TestEnsureQRCodesIdempotent(t *testing.T) {
	pool := getPostgresPool(t)
	repo := NewPostgresAttendeeRepository(pool)

	withCode := createTestAttendee(t, pool, "IT-HAS-CODE", "it-has-code@test.local", true)
	withoutCode := createTestAttendee(t, pool, "", "it-no-code@test.local", true)

	ctx := context.Background()

	updated, err := repo.EnsureQRCodes(ctx, false)
	if err != nil {
		t.Fatalf("EnsureQRCodes() unexpected error = %v", err)
	}
	if updated < 1 {
		t.Errorf("EnsureQRCodes() updated = %d, want at least 1", updated)
	}

	var existing string
	if err := pool.QueryRow(ctx, `SELECT qr_code FROM attendees WHERE id = $1`, withCode).Scan(&existing); err != nil {
		t.Fatalf("Failed to read qr_code: %v", err)
	}
	if existing != "IT-HAS-CODE" {
		t.Errorf("existing qr_code was overwritten: %q", existing)
	}

	var assigned *string
	if err := pool.QueryRow(ctx, `SELECT qr_code FROM attendees WHERE id = $1`, withoutCode).Scan(&assigned); err != nil {
		t.Fatalf("Failed to read qr_code: %v", err)
	}
	if assigned == nil || *assigned == "" {
		t.Error("attendee without code did not receive one")
	}

	// A second run finds nothing left to assign.
	again, err := repo.EnsureQRCodes(ctx, false)
	if err != nil {
		t.Fatalf("EnsureQRCodes() second run unexpected error = %v", err)
	}
	if again != 0 {
		t.Errorf("EnsureQRCodes() second run updated = %d, want 0", again)
	}
}
