package redemption

import (
	"net/http"
	"strconv"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("redemption.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, svc *Service, mw *identity.Middleware) {
	user := r.Group("/v1/redemptions", mw.Authenticate())

	user.POST("", func(c *gin.Context) {
		sess, err := identity.SessionFromContext(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var req RedeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}

		rd, err := svc.Redeem(c.Request.Context(), sess, req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, rd)
	})

	user.GET("", func(c *gin.Context) {
		sess, err := identity.SessionFromContext(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		redemptions, err := svc.ListMine(c.Request.Context(), sess)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": redemptions})
	})

	admin := r.Group("/v1/admin/redemptions", mw.Authenticate(), mw.RequireAdmin())

	admin.GET("", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		redemptions, err := svc.AdminList(c.Request.Context(), limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": redemptions})
	})

	admin.PATCH("/:id/status", func(c *gin.Context) {
		var req struct {
			Status Status `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}

		rd, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, rd)
	})
}
