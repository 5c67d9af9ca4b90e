// Package admin holds the operator-only surface: day-document provisioning
// and admin grants.
package admin

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gratitree/core/internal/database"
	"github.com/gratitree/core/internal/middleware"
	"github.com/gratitree/core/internal/models"
	"github.com/gratitree/core/internal/modules/daytree"
	"github.com/gratitree/core/internal/modules/entry"
	"github.com/gratitree/core/internal/pkg/response"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProvisionDays is how many day documents one provisioning run writes.
const ProvisionDays = 7

type Service struct {
	store entry.Store
	db    *mongo.Database
	now   func() time.Time
}

func NewService(store entry.Store, db *mongo.Database) *Service {
	return &Service{store: store, db: db, now: time.Now}
}

// Provision upserts day documents for today and the following days, each
// carrying its lock deadline. Re-running is safe; existing documents are
// overwritten with the same values.
func (s *Service) Provision(ctx context.Context) ([]models.Day, error) {
	ids := daytree.UpcomingDayIDs(s.now(), ProvisionDays)
	days := make([]models.Day, 0, len(ids))
	for _, id := range ids {
		day := models.Day{DayID: id, OpenUntil: daytree.LockInstant(id)}
		if err := s.store.UpsertDay(ctx, day); err != nil {
			return days, err
		}
		days = append(days, day)
	}
	return days, nil
}

// GrantAdmin sets the admin flag on a user. The grantee picks it up on their
// next token refresh.
func (s *Service) GrantAdmin(ctx context.Context, userID string, admin bool) error {
	res, err := s.db.Collection(database.CollUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "admin", Value: admin}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errUserNotFound
	}
	return nil
}

var errUserNotFound = errors.New("user not found")

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the admin routes. All of them require the admin claim.
func (h *Handler) Register(r *gin.RouterGroup) {
	g := r.Group("/admin", middleware.Auth(), middleware.AdminOnly())
	{
		g.POST("/provision", h.provision)
		g.PATCH("/users/:userID/admin", h.setAdmin)
	}
}

func (h *Handler) provision(c *gin.Context) {
	days, err := h.service.Provision(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"provisioned": days})
}

type setAdminDTO struct {
	Admin bool `json:"admin"`
}

func (h *Handler) setAdmin(c *gin.Context) {
	var dto setAdminDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := h.service.GrantAdmin(c.Request.Context(), c.Param("userID"), dto.Admin); err != nil {
		if errors.Is(err, errUserNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
