package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookwise/room-booking-backend/internal/domain"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

// getPostgresPool creates a PostgreSQL connection pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("TEST_POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("TEST_POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("TEST_POSTGRES_DB")
	if dbname == "" {
		dbname = "room_booking_test"
	}

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

	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	// Clean up in reverse order of dependencies
	tables := []string{
		"audit_events",
		"availability_blocks",
		"bookings",
		"rooms",
	}

	for _, table := range tables {
		_, err := pool.Exec(ctx, "DELETE FROM "+table)
		if err != nil {
			t.Logf("Warning: failed to clean up %s: %v", table, err)
		}
	}
}

func createTestRoom(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO rooms (id, name, description, capacity, is_active, created_at, updated_at)
		 VALUES ($1, $2, '', 10, TRUE, now(), now())`,
		id, "Room "+id[:8])
	if err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}
	return id
}

func testBooking(userID, roomID string, start, end time.Time) *domain.Booking {
	now := time.Now().UTC()
	return &domain.Booking{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
		Status:    domain.BookingStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresBookingRepository_CreateAndGet(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)
	roomID := createTestRoom(t, pool)
	ctx := context.Background()

	start := time.Now().UTC().AddDate(0, 0, 1)
	booking := testBooking("user-1", roomID, start, start.AddDate(0, 0, 2))

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := repo.CreateTx(ctx, tx, booking); err != nil {
		t.Fatalf("CreateTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := repo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UserID != "user-1" || got.Status != domain.BookingStatusConfirmed {
		t.Errorf("GetByID = %+v", got)
	}
}

func TestPostgresBookingRepository_GetByID_NotFound(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	if err != domain.ErrBookingNotFound {
		t.Errorf("GetByID error = %v, want %v", err, domain.ErrBookingNotFound)
	}
}

func TestPostgresBookingRepository_HasOverlappingTx(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)
	roomID := createTestRoom(t, pool)
	ctx := context.Background()

	base := time.Date(2030, 6, 10, 14, 0, 0, 0, time.UTC)
	existing := testBooking("user-1", roomID, base, base.AddDate(0, 0, 2))

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := repo.CreateTx(ctx, tx, existing); err != nil {
		t.Fatalf("CreateTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		excludeID string
		want      bool
	}{
		{name: "identical range", start: base, end: base.AddDate(0, 0, 2), want: true},
		{name: "partial overlap at end", start: base.AddDate(0, 0, 1), end: base.AddDate(0, 0, 3), want: true},
		{name: "contained range", start: base.Add(2 * time.Hour), end: base.Add(5 * time.Hour), want: true},
		{name: "adjacent after", start: base.AddDate(0, 0, 2), end: base.AddDate(0, 0, 3), want: false},
		{name: "adjacent before", start: base.AddDate(0, 0, -1), end: base, want: false},
		{name: "excluding the booking itself", start: base, end: base.AddDate(0, 0, 2), excludeID: existing.ID, want: false},
		{name: "excluding an unrelated booking", start: base, end: base.AddDate(0, 0, 2), excludeID: uuid.NewString(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := pool.Begin(ctx)
			if err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			defer tx.Rollback(ctx)

			got, err := repo.HasOverlappingTx(ctx, tx, roomID, tt.start, tt.end, tt.excludeID)
			if err != nil {
				t.Fatalf("HasOverlappingTx failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasOverlappingTx = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostgresBookingRepository_CancelledIgnoredInOverlap(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)
	roomID := createTestRoom(t, pool)
	ctx := context.Background()

	base := time.Date(2030, 7, 1, 14, 0, 0, 0, time.UTC)
	booking := testBooking("user-1", roomID, base, base.AddDate(0, 0, 2))

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := repo.CreateTx(ctx, tx, booking); err != nil {
		t.Fatalf("CreateTx failed: %v", err)
	}
	if err := repo.UpdateStatusTx(ctx, tx, booking.ID, domain.BookingStatusCancelled); err != nil {
		t.Fatalf("UpdateStatusTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tx, err = pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback(ctx)

	got, err := repo.HasOverlappingTx(ctx, tx, roomID, base, base.AddDate(0, 0, 2), "")
	if err != nil {
		t.Fatalf("HasOverlappingTx failed: %v", err)
	}
	if got {
		t.Error("HasOverlappingTx = true for a cancelled booking, want false")
	}
}

func TestPostgresBookingRepository_CountSections(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)
	roomID := createTestRoom(t, pool)
	ctx := context.Background()

	now := time.Now().UTC()
	upcoming := testBooking("user-7", roomID, now.AddDate(0, 0, 5), now.AddDate(0, 0, 7))
	past := testBooking("user-7", roomID, now.AddDate(0, 0, -7), now.AddDate(0, 0, -5))
	cancelled := testBooking("user-7", roomID, now.AddDate(0, 0, 10), now.AddDate(0, 0, 12))
	cancelled.Status = domain.BookingStatusCancelled

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for _, b := range []*domain.Booking{upcoming, past, cancelled} {
		if err := repo.CreateTx(ctx, tx, b); err != nil {
			t.Fatalf("CreateTx failed: %v", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	counts, err := repo.CountSections(ctx, "user-7")
	if err != nil {
		t.Fatalf("CountSections failed: %v", err)
	}
	if counts.Upcoming != 1 || counts.Past != 1 || counts.Cancelled != 1 {
		t.Errorf("CountSections = %+v, want 1/1/1", counts)
	}
}

func TestPostgresBookingRepository_ListByUser_Sections(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)
	roomID := createTestRoom(t, pool)
	ctx := context.Background()

	now := time.Now().UTC()
	upcoming := testBooking("user-8", roomID, now.AddDate(0, 0, 5), now.AddDate(0, 0, 7))
	past := testBooking("user-8", roomID, now.AddDate(0, 0, -7), now.AddDate(0, 0, -5))

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for _, b := range []*domain.Booking{upcoming, past} {
		if err := repo.CreateTx(ctx, tx, b); err != nil {
			t.Fatalf("CreateTx failed: %v", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	items, total, err := repo.ListByUser(ctx, ListMyBookingsParams{
		UserID:  "user-8",
		Section: SectionUpcoming,
		Page:    1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != upcoming.ID {
		t.Errorf("ListByUser upcoming = %d items, total %d", len(items), total)
	}
	if items[0].RoomName == "" {
		t.Error("ListByUser should join the room name")
	}
}

func TestPostgresBookingRepository_UpdateDatesTx(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresBookingRepository(pool)
	roomID := createTestRoom(t, pool)
	ctx := context.Background()

	base := time.Date(2030, 8, 1, 9, 0, 0, 0, time.UTC)
	booking := testBooking("user-1", roomID, base, base.AddDate(0, 0, 1))

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := repo.CreateTx(ctx, tx, booking); err != nil {
		t.Fatalf("CreateTx failed: %v", err)
	}

	newStart := base.AddDate(0, 0, 10)
	newEnd := base.AddDate(0, 0, 12)
	if err := repo.UpdateDatesTx(ctx, tx, booking.ID, newStart, newEnd); err != nil {
		t.Fatalf("UpdateDatesTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := repo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.StartDate.Equal(newStart) || !got.EndDate.Equal(newEnd) {
		t.Errorf("dates = [%v, %v), want [%v, %v)", got.StartDate, got.EndDate, newStart, newEnd)
	}
}
