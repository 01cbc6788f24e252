package identity

import (
	"context"
	"testing"

	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node})
}

func TestRegisterAndResolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Email: "Ana@Example.com", DisplayName: "Ana"})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", resp.User.Email)
	require.Equal(t, RoleUser, resp.User.Role)
	require.NotEmpty(t, resp.APIToken)

	sess, err := svc.Resolve(ctx, resp.APIToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, sess.UserID)
	require.False(t, sess.IsAdmin())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "ANA@example.com"})
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusConflict, be.Code)
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "not-an-email"})
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
}

func TestResolveUnknownToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Resolve(context.Background(), "bogus")
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusUnauthorized, be.Code)

	_, err = svc.Resolve(context.Background(), "")
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusUnauthorized, be.Code)
}
