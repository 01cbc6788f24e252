package reward

import (
	"net/http"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("reward.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, svc *Service, mw *identity.Middleware) {
	r.GET("/v1/rewards", func(c *gin.Context) {
		rewards, err := svc.ListActive(c.Request.Context(), Category(c.Query("category")))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rewards})
	})

	admin := r.Group("/v1/admin/rewards", mw.Authenticate(), mw.RequireAdmin())

	admin.POST("", func(c *gin.Context) {
		var req UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}
		rw, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, rw)
	})

	admin.PATCH("/:id", func(c *gin.Context) {
		var req UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}
		rw, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, rw)
	})

	admin.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
