package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gratitree/core/internal/modules/admin"
	"github.com/gratitree/core/internal/modules/auth"
	"github.com/gratitree/core/internal/modules/daytree"
	"github.com/gratitree/core/internal/modules/entry"
	"github.com/gratitree/core/internal/pkg/response"
)

func (a *App) registerRoutes(store entry.Store, entryService *entry.Service) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{
			"pong":     true,
			"day":      daytree.DayKey(time.Now()),
			"timezone": daytree.ReferenceTimezone,
		})
	})

	api := r.Group("/api/v1")
	{
		entry.NewHandler(entryService).Register(api)
		auth.NewHandler(auth.NewService(a.db)).Register(api)
		admin.NewHandler(admin.NewService(store, a.db)).Register(api)
	}

	// socket.io transport for live tree updates
	r.Any("/socket.io/*any", gin.WrapH(a.hub.Handler()))
}
