package entry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gratitree/core/internal/middleware"
	"github.com/gratitree/core/internal/modules/daytree"
	"github.com/gratitree/core/internal/pkg/response"
)

// DayPickerSize is how many recent days the picker offers.
const DayPickerSize = 6

// Handler exposes the day and entry routes.
type Handler struct {
	service *Service
}

// NewHandler returns the entry HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the routes on the API group.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.GET("/days", h.listDays)

	day := r.Group("/days/:dayID")
	day.Use(dayIDGuard())
	{
		day.GET("", h.getDay)
		day.GET("/entries", h.listEntries)
		day.GET("/quota", middleware.Auth(), h.getQuota)
		day.POST("/entries", middleware.Auth(), h.submit)
	}
}

// dayIDGuard rejects malformed day ids before any handler runs.
func dayIDGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !daytree.ValidDayID(c.Param("dayID")) {
			response.BadRequest(c, "invalid day id, expected YYYY-MM-DD")
			return
		}
		c.Next()
	}
}

func (h *Handler) listDays(c *gin.Context) {
	response.OK(c, daytree.DayOptions(time.Now(), DayPickerSize))
}

func (h *Handler) getDay(c *gin.Context) {
	dayID := c.Param("dayID")
	now := time.Now()
	response.OK(c, gin.H{
		"day_id":  dayID,
		"label":   daytree.DayLabel(dayID, now),
		"open":    daytree.IsOpen(dayID, now),
		"lock_at": daytree.LockInstant(dayID),
	})
}

func (h *Handler) listEntries(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context(), c.Param("dayID"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, snapshot)
}

func (h *Handler) getQuota(c *gin.Context) {
	quota, err := h.service.Quota(c.Request.Context(), c.Param("dayID"), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, quota)
}

func (h *Handler) submit(c *gin.Context) {
	var dto SubmitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	entry, used, err := h.service.Submit(c.Request.Context(), c.Param("dayID"), middleware.CurrentUserID(c), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrTextRequired),
			errors.Is(err, ErrTextTooLong),
			errors.Is(err, ErrDayLocked),
			errors.Is(err, ErrQuotaExceeded):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Created(c, gin.H{
		"entry": NewEntryView(*entry),
		"used":  used,
		"max":   MaxEntriesPerDay,
	})
}
