package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/repository"
)

type roomServiceFixture struct {
	roomRepo         *MockRoomRepository
	availabilityRepo *MockAvailabilityRepository
	auditRepo        *MockAuditRepository
	svc              RoomService
}

func newRoomServiceFixture() *roomServiceFixture {
	f := &roomServiceFixture{
		roomRepo:         &MockRoomRepository{},
		availabilityRepo: &MockAvailabilityRepository{},
		auditRepo:        &MockAuditRepository{},
	}
	f.svc = NewRoomService(f.roomRepo, f.availabilityRepo, f.auditRepo, func() time.Time { return testNow })
	return f
}

func testRoom() *domain.Room {
	return &domain.Room{
		ID:       "room-1",
		Name:     "Boardroom",
		Capacity: 12,
		IsActive: true,
	}
}

func TestRoomService_CreateRoom(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateRoomInput
		wantErr error
	}{
		{
			name:  "success",
			input: CreateRoomInput{Name: "Boardroom", Description: "Top floor", Capacity: 12},
		},
		{
			name:    "missing name",
			input:   CreateRoomInput{Capacity: 12},
			wantErr: domain.ErrInvalidRoomName,
		},
		{
			name:    "zero capacity",
			input:   CreateRoomInput{Name: "Boardroom"},
			wantErr: domain.ErrInvalidCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoomServiceFixture()

			var created *domain.Room
			f.roomRepo.CreateFunc = func(ctx context.Context, room *domain.Room) error {
				created = room
				return nil
			}

			room, err := f.svc.CreateRoom(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateRoom() error = %v, wantErr %v", err, tt.wantErr)
				}
				if created != nil {
					t.Error("CreateRoom() persisted an invalid room")
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateRoom() unexpected error = %v", err)
			}
			if room.ID == "" {
				t.Error("CreateRoom() expected a generated ID")
			}
			if !room.IsActive {
				t.Error("CreateRoom() new room should be active")
			}
		})
	}
}

func TestRoomService_UpdateRoom(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Room, error) {
		return testRoom(), nil
	}

	var updated *domain.Room
	f.roomRepo.UpdateFunc = func(ctx context.Context, room *domain.Room) error {
		updated = room
		return nil
	}

	room, err := f.svc.UpdateRoom(context.Background(), UpdateRoomInput{
		RoomID: "room-1", Name: "War Room", Description: "Renamed", Capacity: 8,
	})
	if err != nil {
		t.Fatalf("UpdateRoom() unexpected error = %v", err)
	}

	if updated == nil {
		t.Fatal("UpdateRoom() did not persist")
	}
	if room.Name != "War Room" || room.Capacity != 8 {
		t.Errorf("UpdateRoom() = %+v", room)
	}
}

func TestRoomService_UpdateRoom_NotFound(t *testing.T) {
	f := newRoomServiceFixture()

	_, err := f.svc.UpdateRoom(context.Background(), UpdateRoomInput{
		RoomID: "missing", Name: "War Room", Capacity: 8,
	})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("UpdateRoom() error = %v, want %v", err, domain.ErrRoomNotFound)
	}
}

func TestRoomService_Search_RejectsHalfRange(t *testing.T) {
	f := newRoomServiceFixture()

	start := testNow.AddDate(0, 0, 1)
	_, err := f.svc.Search(context.Background(), repository.SearchRoomsParams{StartDate: &start})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("Search() error = %v, want %v", err, domain.ErrInvalidDateRange)
	}
}

func TestRoomService_Search(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.SearchFunc = func(ctx context.Context, params repository.SearchRoomsParams) ([]*domain.Room, int, error) {
		return []*domain.Room{testRoom()}, 1, nil
	}

	start := testNow.AddDate(0, 0, 1)
	end := testNow.AddDate(0, 0, 3)
	list, err := f.svc.Search(context.Background(), repository.SearchRoomsParams{
		StartDate: &start, EndDate: &end, MinCapacity: 4,
	})
	if err != nil {
		t.Fatalf("Search() unexpected error = %v", err)
	}
	if len(list.Items) != 1 || list.Total != 1 || list.HasMore {
		t.Errorf("Search() = %d items, total %d, hasMore %v", len(list.Items), list.Total, list.HasMore)
	}
}

func TestRoomService_BlockRange(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Room, error) {
		return testRoom(), nil
	}

	var blockedDays []time.Time
	f.availabilityRepo.BlockDaysFunc = func(ctx context.Context, roomID string, days []time.Time) error {
		blockedDays = days
		return nil
	}

	var audit *domain.AuditEvent
	f.auditRepo.CreateFunc = func(ctx context.Context, event *domain.AuditEvent) error {
		audit = event
		return nil
	}

	// Three calendar days inclusive
	days, err := f.svc.BlockRange(context.Background(), BlockRangeInput{
		RoomID:    "room-1",
		StartDate: time.Date(2026, 2, 1, 15, 30, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Reason:    "maintenance",
	})
	if err != nil {
		t.Fatalf("BlockRange() unexpected error = %v", err)
	}

	if len(days) != 3 || len(blockedDays) != 3 {
		t.Fatalf("BlockRange() blocked %d days, want 3", len(blockedDays))
	}
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !blockedDays[0].Equal(want) {
		t.Errorf("first blocked day = %v, want %v", blockedDays[0], want)
	}
	if audit == nil || audit.Action != domain.AuditActionBlocked {
		t.Errorf("BlockRange() audit event = %+v, want action %v", audit, domain.AuditActionBlocked)
	}
}

func TestRoomService_BlockRange_RoomNotFound(t *testing.T) {
	f := newRoomServiceFixture()

	_, err := f.svc.BlockRange(context.Background(), BlockRangeInput{
		RoomID:    "missing",
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("BlockRange() error = %v, want %v", err, domain.ErrRoomNotFound)
	}
}

func TestRoomService_BlockRange_InvertedRange(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Room, error) {
		return testRoom(), nil
	}

	_, err := f.svc.BlockRange(context.Background(), BlockRangeInput{
		RoomID:    "room-1",
		StartDate: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("BlockRange() error = %v, want %v", err, domain.ErrInvalidDateRange)
	}
}

func TestRoomService_UnblockRange(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Room, error) {
		return testRoom(), nil
	}

	var unblocked []time.Time
	f.availabilityRepo.UnblockDaysFunc = func(ctx context.Context, roomID string, days []time.Time) error {
		unblocked = days
		return nil
	}

	var audit *domain.AuditEvent
	f.auditRepo.CreateFunc = func(ctx context.Context, event *domain.AuditEvent) error {
		audit = event
		return nil
	}

	days, err := f.svc.UnblockRange(context.Background(), BlockRangeInput{
		RoomID:    "room-1",
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("UnblockRange() unexpected error = %v", err)
	}

	if len(days) != 1 || len(unblocked) != 1 {
		t.Errorf("UnblockRange() unblocked %d days, want 1", len(unblocked))
	}
	if audit == nil || audit.Action != domain.AuditActionUnblocked {
		t.Errorf("UnblockRange() audit event = %+v, want action %v", audit, domain.AuditActionUnblocked)
	}
}

func TestRoomService_ToggleActive(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.ToggleActiveFunc = func(ctx context.Context, id string) (*domain.Room, error) {
		room := testRoom()
		room.IsActive = false
		return room, nil
	}

	room, err := f.svc.ToggleActive(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("ToggleActive() unexpected error = %v", err)
	}
	if room.IsActive {
		t.Error("ToggleActive() room still active")
	}
}

func TestRoomService_ListBlocks(t *testing.T) {
	f := newRoomServiceFixture()

	f.roomRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Room, error) {
		return testRoom(), nil
	}
	f.availabilityRepo.ListByRoomFunc = func(ctx context.Context, roomID string) ([]*domain.AvailabilityBlock, error) {
		return []*domain.AvailabilityBlock{
			{ID: "block-1", RoomID: roomID, Day: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), IsBlocked: true},
		}, nil
	}

	blocks, err := f.svc.ListBlocks(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("ListBlocks() unexpected error = %v", err)
	}
	if len(blocks) != 1 {
		t.Errorf("ListBlocks() = %d blocks, want 1", len(blocks))
	}
}
