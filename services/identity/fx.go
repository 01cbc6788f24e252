package identity

import (
	"net/http"

	"oilcycle-platform/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(
		NewService,
		NewMiddleware,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, svc *Service, mw *Middleware) {
	r.POST("/v1/auth/register", func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
			return
		}

		resp, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	})

	r.GET("/v1/me", mw.Authenticate(), func(c *gin.Context) {
		sess, err := SessionFromContext(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		user, err := svc.Me(c.Request.Context(), sess)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, user)
	})
}
