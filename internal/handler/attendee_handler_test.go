package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eventops/qr-checkin-api/internal/domain"
)

// MockAttendeeService is a mock implementation of AttendeeService for testing
type MockAttendeeService struct {
	ListFunc          func(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error)
	EnsureQRCodesFunc func(ctx context.Context, onlyActive bool) (int, error)
}

func (m *MockAttendeeService) List(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page)
	}
	return []domain.Attendee{}, nil
}

func (m *MockAttendeeService) EnsureQRCodes(ctx context.Context, onlyActive bool) (int, error) {
	if m.EnsureQRCodesFunc != nil {
		return m.EnsureQRCodesFunc(ctx, onlyActive)
	}
	return 0, nil
}

func setupAttendeeRouter(svc *MockAttendeeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAttendeeHandler(svc)
	router.GET("/attendees", h.List)
	router.POST("/attendees/ensure-qr", h.EnsureQR)
	return router
}

func TestAttendeeHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:  "default listing",
			query: "",
			mockFunc: func(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error) {
				if filter.ActiveOnly || filter.Query != "" {
					t.Errorf("List filter = %+v, want zero value", filter)
				}
				return []domain.Attendee{
					{ID: 1, FullName: "Ada Lovelace", Email: "ada@example.org"},
					{ID: 2, FullName: "Grace Hopper", Email: "grace@example.org"},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:  "active filter and search",
			query: "?active=true&q=ada&limit=10&offset=20",
			mockFunc: func(ctx context.Context, filter domain.AttendeeFilter, page domain.Page) ([]domain.Attendee, error) {
				if !filter.ActiveOnly || filter.Query != "ada" {
					t.Errorf("List filter = %+v", filter)
				}
				if page.Limit != 10 || page.Offset != 20 {
					t.Errorf("List page = %+v", page)
				}
				return []domain.Attendee{{ID: 1, FullName: "Ada Lovelace"}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "invalid active flag",
			query:          "?active=maybe",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "limit above cap",
			query:          "?limit=999999",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative offset",
			query:          "?offset=-1",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAttendeeRouter(&MockAttendeeService{ListFunc: tt.mockFunc})
			req := httptest.NewRequest(http.MethodGet, "/attendees"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("List() status = %d, want %d, body %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					OK    bool `json:"ok"`
					Count int  `json:"count"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if !resp.OK || resp.Count != tt.expectedCount {
					t.Errorf("List() response = %s, want count %d", w.Body.String(), tt.expectedCount)
				}
			}
		})
	}
}

func TestAttendeeHandler_EnsureQR(t *testing.T) {
	router := setupAttendeeRouter(&MockAttendeeService{
		EnsureQRCodesFunc: func(ctx context.Context, onlyActive bool) (int, error) {
			if !onlyActive {
				t.Errorf("EnsureQRCodes onlyActive = false, want true")
			}
			return 3, nil
		},
	})

	w := postJSON(t, router, "/attendees/ensure-qr", map[string]any{"only_active": true})
	if w.Code != http.StatusOK {
		t.Fatalf("EnsureQR() status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK      bool `json:"ok"`
		Updated int  `json:"updated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.OK || resp.Updated != 3 {
		t.Errorf("EnsureQR() response = %s, want updated 3", w.Body.String())
	}
}

func TestAttendeeHandler_EnsureQREmptyBody(t *testing.T) {
	called := false
	router := setupAttendeeRouter(&MockAttendeeService{
		EnsureQRCodesFunc: func(ctx context.Context, onlyActive bool) (int, error) {
			called = true
			if onlyActive {
				t.Errorf("EnsureQRCodes onlyActive = true, want false for empty body")
			}
			return 0, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/attendees/ensure-qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("EnsureQR() status = %d, body %s", w.Code, w.Body.String())
	}
	if !called {
		t.Error("EnsureQRCodes was not called")
	}
}
