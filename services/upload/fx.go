package upload

import (
	"net/http"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("upload.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, svc *Service, mw *identity.Middleware) {
	r.POST("/v1/uploads", mw.Authenticate(), func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			_ = c.Error(errutil.BadRequest("file field is required", errutil.WithErr(err)))
			return
		}

		url, err := svc.Store(c.Request.Context(), header)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"file_url": url})
	})
}
