package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"subscriber-activity-backend/internal/monitor"
	"subscriber-activity-backend/internal/store"
)

// SnapshotProvider exposes the most recently published activity snapshot.
type SnapshotProvider interface {
	Snapshot() *monitor.Snapshot
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	activity SnapshotProvider
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, activity SnapshotProvider, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		activity: activity,
		webpush:  webpushOptions,
	}
}
