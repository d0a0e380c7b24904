package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"subscriber-activity-backend/internal/timeline"
)

// projectedService is the render-ready slice of the snapshot: a label and
// window-relative geometry per service. The renderer owns all visual mapping.
type projectedService struct {
	Key       string                     `json:"service_key"`
	Label     string                     `json:"label"`
	Projected []timeline.ProjectedPeriod `json:"projected"`
}

// GetActivity handles GET /api/activity: the published snapshot, projected
// onto the shared window, plus aggregate presence totals.
func (h *Handler) GetActivity(c *gin.Context) {
	snap := h.activity.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "activity data not yet available"})
		return
	}

	services := make([]projectedService, 0, len(snap.Services))
	for _, svc := range snap.Services {
		services = append(services, projectedService{
			Key:       svc.Key,
			Label:     svc.Label,
			Projected: svc.Projected,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"computed_at": snap.ComputedAt,
			"window":      snap.Window,
			"services":    services,
			"totals":      snap.Totals,
		},
	})
}

// GetActivityServices handles GET /api/activity/services: the raw,
// unprojected per-service periods.
func (h *Handler) GetActivityServices(c *gin.Context) {
	snap := h.activity.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "activity data not yet available"})
		return
	}

	timelines := make([]timeline.ServiceTimeline, 0, len(snap.Services))
	for _, svc := range snap.Services {
		timelines = append(timelines, timeline.ServiceTimeline{
			Key:     svc.Key,
			Label:   svc.Label,
			Periods: svc.Periods,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": timelines, "count": len(timelines)})
}
