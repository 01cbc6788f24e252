package identity

import (
	"strings"

	"oilcycle-platform/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const sessionKey = "identity.session"

// Middleware gates routes on an authenticated session and, for admin
// routes, on the admin role.
type Middleware struct {
	svc *Service
}

func NewMiddleware(svc *Service) *Middleware {
	return &Middleware{svc: svc}
}

func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		bearer := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		sess, err := m.svc.Resolve(c.Request.Context(), bearer)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := SessionFromContext(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !sess.IsAdmin() {
			_ = c.Error(errutil.Forbidden("administrator role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func SessionFromContext(c *gin.Context) (Session, error) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, errutil.Unauthorized("no session")
	}
	sess, ok := v.(*Session)
	if !ok || sess == nil {
		return Session{}, errutil.Unauthorized("no session")
	}
	return *sess, nil
}
