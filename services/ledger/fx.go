package ledger

import (
	"net/http"

	"oilcycle-platform/services/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, svc *Service, mw *identity.Middleware) {
	r.GET("/v1/ledger/snapshot", mw.Authenticate(), func(c *gin.Context) {
		sess, err := identity.SessionFromContext(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		snap, err := svc.GetSnapshot(c.Request.Context(), sess)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, snap)
	})
}
