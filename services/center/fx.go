package center

import (
	"net/http"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("center.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, svc *Service, mw *identity.Middleware) {
	r.GET("/v1/centers", func(c *gin.Context) {
		centers, err := svc.ListActive(c.Request.Context(), c.Query("search"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": centers})
	})

	admin := r.Group("/v1/admin/centers", mw.Authenticate(), mw.RequireAdmin())

	admin.POST("", func(c *gin.Context) {
		var req UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}
		created, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	admin.PATCH("/:id", func(c *gin.Context) {
		var req UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}
		updated, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	admin.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
