package features

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status values a feature request moves through.
const (
	StatusSubmitted       = "Submitted"
	StatusInConsideration = "In Consideration"
	StatusBuilding        = "Building"
	StatusImplementing    = "Implementing"
	StatusComplete        = "Complete"
)

var ErrInvalidStatus = errors.New("unknown feature status")

// Request is one operator-submitted feature request.
type Request struct {
	ID          string    `json:"id"`
	Title       string    `json:"Title"`
	Description string    `json:"Description"`
	Owner       string    `json:"Owner"`
	Status      string    `json:"Status"`
	Timestamp   time.Time `json:"Timestamp"`
}

// Tracker persists feature requests in the document store.
type Tracker struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(st *store.Store, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  st,
		logger: logger.Named("features"),
		now:    time.Now,
	}
}

// Submit files a new request in Submitted status and returns its identifier.
func (t *Tracker) Submit(ctx context.Context, title, description, owner string) (string, error) {
	id := uuid.NewString()
	err := t.store.Upsert(ctx, store.CollectionFeatures,
		store.Filter{"id": id},
		store.Document{
			"id":          id,
			"Title":       title,
			"Description": description,
			"Owner":       owner,
			"Status":      StatusSubmitted,
			"Timestamp":   t.now().UTC(),
		},
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SetStatus moves a request to a new status.
func (t *Tracker) SetStatus(ctx context.Context, id, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return t.store.Upsert(ctx, store.CollectionFeatures,
		store.Filter{"id": id},
		store.Document{"Status": status},
	)
}

// List returns every request, optionally filtered by status.
func (t *Tracker) List(ctx context.Context, status string) ([]Request, error) {
	var filter store.Filter
	if status != "" {
		if !validStatus(status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		filter = store.Filter{"Status": status}
	}

	docs, err := t.store.Read(ctx, store.CollectionFeatures, filter)
	if err != nil {
		return nil, err
	}

	requests := make([]Request, 0, len(docs))
	for _, doc := range docs {
		req := Request{
			ID:          str(doc["id"]),
			Title:       str(doc["Title"]),
			Description: str(doc["Description"]),
			Owner:       str(doc["Owner"]),
			Status:      str(doc["Status"]),
		}
		if at, ok := doc["Timestamp"].(time.Time); ok {
			req.Timestamp = at
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func validStatus(status string) bool {
	switch status {
	case StatusSubmitted, StatusInConsideration, StatusBuilding, StatusImplementing, StatusComplete:
		return true
	}
	return false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
