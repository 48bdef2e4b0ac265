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

	"github.com/eventops/qr-checkin-api/internal/domain"
	"github.com/eventops/qr-checkin-api/internal/service"
)

// MockCheckinService is a mock implementation of CheckinService for testing
type MockCheckinService struct {
	LookupFunc  func(ctx context.Context, rawQR string) (*service.LookupResult, error)
	CheckInFunc func(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error)
}

func (m *MockCheckinService) Lookup(ctx context.Context, rawQR string) (*service.LookupResult, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, rawQR)
	}
	return nil, domain.ErrAttendeeNotFound
}

func (m *MockCheckinService) CheckIn(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error) {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, rawQR, eventID, gate)
	}
	return nil, domain.ErrAttendeeNotFound
}

func setupScanRouter(svc service.CheckinService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewCheckinHandler(svc)
	router.POST("/lookup", h.Lookup)
	router.POST("/checkin", h.CheckIn)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCheckinHandler_Lookup(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		mockFunc       func(ctx context.Context, rawQR string) (*service.LookupResult, error)
		expectedStatus int
	}{
		{
			name: "resolves attendee",
			body: map[string]any{"qr": "ada@example.org"},
			mockFunc: func(ctx context.Context, rawQR string) (*service.LookupResult, error) {
				return &service.LookupResult{
					Attendee:  &domain.Attendee{ID: 41, Email: "ada@example.org", FullName: "Ada Lovelace", Active: true},
					Events:    []domain.Event{{ID: 7, Code: "SUMMIT", Name: "Annual Summit", Active: true}},
					MatchedBy: service.MatchedByIdentifier,
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing qr field",
			body:           map[string]any{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "undecodable payload",
			body: map[string]any{"qr": "???"},
			mockFunc: func(ctx context.Context, rawQR string) (*service.LookupResult, error) {
				return nil, domain.ErrDecode
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown attendee",
			body: map[string]any{"qr": "nobody@example.org"},
			mockFunc: func(ctx context.Context, rawQR string) (*service.LookupResult, error) {
				return nil, domain.ErrAttendeeNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "inactive attendee",
			body: map[string]any{"qr": "ada@example.org"},
			mockFunc: func(ctx context.Context, rawQR string) (*service.LookupResult, error) {
				return nil, domain.ErrAttendeeInactive
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupScanRouter(&MockCheckinService{LookupFunc: tt.mockFunc})
			w := postJSON(t, router, "/lookup", tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("Lookup() status = %d, want %d, body %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					OK        bool   `json:"ok"`
					MatchedBy string `json:"matched_by"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if !resp.OK || resp.MatchedBy != service.MatchedByIdentifier {
					t.Errorf("Lookup() response = %s", w.Body.String())
				}
			}
		})
	}
}

func TestCheckinHandler_CheckIn(t *testing.T) {
	scannedAt := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           map[string]any
		mockFunc       func(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error)
		expectedStatus int
		expectedResult string
	}{
		{
			name: "first scan checks in",
			body: map[string]any{"qr": "QR-41", "event_id": 7, "gate": "north"},
			mockFunc: func(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error) {
				if eventID != 7 || gate != "north" {
					t.Errorf("CheckIn args = (%q, %d, %q)", rawQR, eventID, gate)
				}
				return &domain.CheckinResult{
					Status:    domain.StatusCheckedIn,
					Attendee:  &domain.Attendee{ID: 41},
					ScannedAt: scannedAt,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedResult: string(domain.StatusCheckedIn),
		},
		{
			name: "repeat scan is idempotent",
			body: map[string]any{"qr": "QR-41", "event_id": 7},
			mockFunc: func(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error) {
				return &domain.CheckinResult{
					Status:    domain.StatusAlreadyCheckedIn,
					Attendee:  &domain.Attendee{ID: 41},
					ScannedAt: scannedAt,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedResult: string(domain.StatusAlreadyCheckedIn),
		},
		{
			name:           "missing event_id",
			body:           map[string]any{"qr": "QR-41"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not permitted",
			body: map[string]any{"qr": "QR-41", "event_id": 9},
			mockFunc: func(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error) {
				return nil, domain.ErrNotPermitted
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "unknown attendee",
			body: map[string]any{"qr": "QR-404", "event_id": 7},
			mockFunc: func(ctx context.Context, rawQR string, eventID int64, gate string) (*domain.CheckinResult, error) {
				return nil, domain.ErrAttendeeNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupScanRouter(&MockCheckinService{CheckInFunc: tt.mockFunc})
			w := postJSON(t, router, "/checkin", tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("CheckIn() status = %d, want %d, body %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedResult != "" {
				var resp struct {
					OK     bool   `json:"ok"`
					Status string `json:"status"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if !resp.OK || resp.Status != tt.expectedResult {
					t.Errorf("CheckIn() response = %s, want status %s", w.Body.String(), tt.expectedResult)
				}
			}
		})
	}
}
