package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/room-booking-backend/internal/domain"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/internal/service"
	"github.com/bookwise/room-booking-backend/pkg/middleware"
)

// MockBookingService is a mock implementation of service.BookingService
type MockBookingService struct {
	CreateFunc     func(ctx context.Context, input service.CreateBookingInput) (*domain.Booking, error)
	CancelFunc     func(ctx context.Context, input service.CancelBookingInput) (*domain.Booking, error)
	RescheduleFunc func(ctx context.Context, input service.RescheduleBookingInput) (*domain.Booking, error)
	GetFunc        func(ctx context.Context, bookingID, requesterID, requesterRole string) (*domain.Booking, error)
	ListMineFunc   func(ctx context.Context, params repository.ListMyBookingsParams) (*service.BookingList, error)
	ListAllFunc    func(ctx context.Context, params repository.ListAllBookingsParams) (*service.BookingList, error)
}

func (m *MockBookingService) Create(ctx context.Context, input service.CreateBookingInput) (*domain.Booking, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return nil, nil
}

func (m *MockBookingService) Cancel(ctx context.Context, input service.CancelBookingInput) (*domain.Booking, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, input)
	}
	return nil, nil
}

func (m *MockBookingService) Reschedule(ctx context.Context, input service.RescheduleBookingInput) (*domain.Booking, error) {
	if m.RescheduleFunc != nil {
		return m.RescheduleFunc(ctx, input)
	}
	return nil, nil
}

func (m *MockBookingService) Get(ctx context.Context, bookingID, requesterID, requesterRole string) (*domain.Booking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, bookingID, requesterID, requesterRole)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingService) ListMine(ctx context.Context, params repository.ListMyBookingsParams) (*service.BookingList, error) {
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx, params)
	}
	return &service.BookingList{}, nil
}

func (m *MockBookingService) ListAll(ctx context.Context, params repository.ListAllBookingsParams) (*service.BookingList, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, params)
	}
	return &service.BookingList{}, nil
}

const (
	testBookingID = "5f0c1a3e-8a4b-4f4e-9d5a-2b7c8e1f6a90"
	testRoomID    = "9d2b6c4a-1e3f-4a5b-8c7d-0e9f1a2b3c4d"
)

func setupBookingRouter(svc service.BookingService, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Set(middleware.ContextKeyUserRole, role)
		}
		c.Next()
	})

	h := NewBookingHandler(svc)
	router.POST("/bookings", h.Create)
	router.GET("/bookings", h.ListMine)
	router.GET("/bookings/:id", h.Get)
	router.POST("/bookings/:id/cancel", h.Cancel)
	router.PATCH("/bookings/:id", h.Reschedule)
	return router
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:        testBookingID,
		UserID:    "user-1",
		RoomID:    testRoomID,
		StartDate: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
		Status:    domain.BookingStatusConfirmed,
	}
}

func TestBookingHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       string
		createErr  error
		wantStatus int
	}{
		{
			name:       "created",
			userID:     "user-1",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing room_id",
			userID:     "user-1",
			body:       `{"start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed room_id",
			userID:     "user-1",
			body:       `{"room_id":"not-a-uuid","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "room conflict",
			userID:     "user-1",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			createErr:  domain.ErrRoomConflict,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "room blocked",
			userID:     "user-1",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			createErr:  domain.ErrRoomBlocked,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "past start date",
			userID:     "user-1",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			createErr:  domain.ErrPastStartDate,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "inactive room",
			userID:     "user-1",
			body:       `{"room_id":"` + testRoomID + `","start_date":"2026-03-01T14:00:00Z","end_date":"2026-03-03T11:00:00Z"}`,
			createErr:  domain.ErrRoomInactive,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBookingService{
				CreateFunc: func(ctx context.Context, input service.CreateBookingInput) (*domain.Booking, error) {
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return sampleBooking(), nil
				},
			}

			router := setupBookingRouter(svc, tt.userID, "USER")
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Create status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	tests := []struct {
		name       string
		cancelErr  error
		wantStatus int
	}{
		{name: "cancelled", wantStatus: http.StatusOK},
		{name: "not found", cancelErr: domain.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "forbidden", cancelErr: domain.ErrBookingForbidden, wantStatus: http.StatusForbidden},
		{name: "already cancelled", cancelErr: domain.ErrBookingAlreadyCancelled, wantStatus: http.StatusConflict},
		{name: "not cancellable", cancelErr: domain.ErrBookingNotCancellable, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBookingService{
				CancelFunc: func(ctx context.Context, input service.CancelBookingInput) (*domain.Booking, error) {
					if tt.cancelErr != nil {
						return nil, tt.cancelErr
					}
					b := sampleBooking()
					b.Status = domain.BookingStatusCancelled
					return b, nil
				},
			}

			router := setupBookingRouter(svc, "user-1", "USER")
			req := httptest.NewRequest(http.MethodPost, "/bookings/"+testBookingID+"/cancel", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Cancel status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestBookingHandler_Reschedule(t *testing.T) {
	svc := &MockBookingService{
		RescheduleFunc: func(ctx context.Context, input service.RescheduleBookingInput) (*domain.Booking, error) {
			b := sampleBooking()
			b.StartDate = input.StartDate
			b.EndDate = input.EndDate
			return b, nil
		},
	}

	router := setupBookingRouter(svc, "user-1", "USER")
	body := `{"start_date":"2026-03-10T14:00:00Z","end_date":"2026-03-12T11:00:00Z"}`
	req := httptest.NewRequest(http.MethodPatch, "/bookings/"+testBookingID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Reschedule status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			StartDate time.Time `json:"start_date"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	if !resp.Data.StartDate.Equal(want) {
		t.Errorf("start_date = %v, want %v", resp.Data.StartDate, want)
	}
}

func TestBookingHandler_ListMine(t *testing.T) {
	var gotParams repository.ListMyBookingsParams
	svc := &MockBookingService{
		ListMineFunc: func(ctx context.Context, params repository.ListMyBookingsParams) (*service.BookingList, error) {
			gotParams = params
			return &service.BookingList{
				Items:    []*repository.BookingWithRoom{{Booking: *sampleBooking(), RoomName: "Boardroom", RoomCapacity: 12}},
				Page:     2,
				PageSize: 10,
				Total:    11,
				Counts:   &repository.SectionCounts{Upcoming: 11},
			}, nil
		},
	}

	router := setupBookingRouter(svc, "user-1", "USER")
	req := httptest.NewRequest(http.MethodGet, "/bookings?section=past&page=2&page_size=10&search=board", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ListMine status = %d, body %s", w.Code, w.Body.String())
	}
	if gotParams.Section != repository.SectionPast {
		t.Errorf("section = %v, want past", gotParams.Section)
	}
	if gotParams.Page != 2 || gotParams.PageSize != 10 {
		t.Errorf("pagination = %d/%d, want 2/10", gotParams.Page, gotParams.PageSize)
	}
	if gotParams.Search != "board" {
		t.Errorf("search = %q, want %q", gotParams.Search, "board")
	}
}

func TestBookingHandler_ListMine_InvalidSection(t *testing.T) {
	router := setupBookingRouter(&MockBookingService{}, "user-1", "USER")
	req := httptest.NewRequest(http.MethodGet, "/bookings?section=bogus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("ListMine status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestBookingHandler_Get(t *testing.T) {
	svc := &MockBookingService{
		GetFunc: func(ctx context.Context, bookingID, requesterID, requesterRole string) (*domain.Booking, error) {
			if requesterID != "user-1" {
				return nil, domain.ErrBookingForbidden
			}
			return sampleBooking(), nil
		},
	}

	router := setupBookingRouter(svc, "user-1", "USER")
	req := httptest.NewRequest(http.MethodGet, "/bookings/"+testBookingID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Get status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestBookingHandler_MalformedID(t *testing.T) {
	// A non-uuid id must be rejected before the service is reached
	svc := &MockBookingService{
		GetFunc: func(ctx context.Context, bookingID, requesterID, requesterRole string) (*domain.Booking, error) {
			t.Errorf("service called with id %q", bookingID)
			return nil, domain.ErrBookingNotFound
		},
		CancelFunc: func(ctx context.Context, input service.CancelBookingInput) (*domain.Booking, error) {
			t.Errorf("service called with id %q", input.BookingID)
			return nil, domain.ErrBookingNotFound
		},
	}

	router := setupBookingRouter(svc, "user-1", "USER")

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/bookings/not-a-uuid", nil),
		httptest.NewRequest(http.MethodPost, "/bookings/not-a-uuid/cancel", nil),
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want %d", req.Method, req.URL.Path, w.Code, http.StatusNotFound)
		}
	}
}
