package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eventops/qr-checkin-api/internal/domain"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*domain.Event, error)
	ListFunc    func(ctx context.Context, activeOnly bool) ([]domain.Event, error)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) List(ctx context.Context, activeOnly bool) ([]domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, activeOnly)
	}
	return []domain.Event{}, nil
}

func TestEventList(t *testing.T) {
	eventRepo := &MockEventRepository{
		ListFunc: func(ctx context.Context, activeOnly bool) ([]domain.Event, error) {
			if !activeOnly {
				t.Errorf("List activeOnly = false, want true")
			}
			return []domain.Event{
				{ID: 7, Code: "SUMMIT", Name: "Annual Summit", Active: true},
			}, nil
		},
	}

	svc := NewEventService(eventRepo)
	events, err := svc.List(context.Background(), true)
	if err != nil {
		t.Fatalf("List() error = %v, wantErr nil", err)
	}
	if len(events) != 1 || events[0].Code != "SUMMIT" {
		t.Errorf("List() events = %+v", events)
	}
}

func TestEventGet(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		repo    *MockEventRepository
		wantErr error
	}{
		{
			name: "found",
			id:   7,
			repo: &MockEventRepository{
				GetByIDFunc: func(ctx context.Context, id int64) (*domain.Event, error) {
					return &domain.Event{ID: id, Code: "SUMMIT", Name: "Annual Summit"}, nil
				},
			},
		},
		{
			name:    "unknown id",
			id:      99,
			repo:    &MockEventRepository{},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name:    "non-positive id",
			id:      0,
			repo:    &MockEventRepository{},
			wantErr: domain.ErrInvalidEventID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEventService(tt.repo)
			event, err := svc.Get(context.Background(), tt.id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Get() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v, wantErr nil", err)
			}
			if event.ID != tt.id {
				t.Errorf("Get() id = %d, want %d", event.ID, tt.id)
			}
		})
	}
}
