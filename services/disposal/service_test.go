package disposal

import (
	"context"
	"testing"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/center"
	"oilcycle-platform/services/identity"
	"oilcycle-platform/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Points.Rates = map[string]int64{
		"motor_oil":          10,
		"cooking_oil":        8,
		"hydraulic_oil":      12,
		"transmission_fluid": 11,
		"other":              5,
	}
	return cfg
}

func newTestService(t *testing.T) (*Service, *center.Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Disposal{}, &center.DisposalCenter{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	centers := center.NewService(center.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{
		DB:      db,
		Node:    node,
		Config:  testConfig(),
		Centers: centers,
	})
	return svc, centers, db
}

func seedCenter(t *testing.T, centers *center.Service) *center.DisposalCenter {
	t.Helper()
	c, err := centers.Create(context.Background(), center.UpsertRequest{
		Name:    "Riverside Recycling",
		Address: "12 River Rd",
	})
	require.NoError(t, err)
	return c
}

func TestAwardPoints(t *testing.T) {
	cases := []struct {
		quantity string
		rate     int64
		want     int64
	}{
		{"5.0", 10, 50},
		{"2.45", 10, 25},  // 24.5 rounds up
		{"2.44", 10, 24},  // 24.4 rounds down
		{"0.1", 5, 1},     // 0.5 rounds up
		{"3.0", 11, 33},
		{"1.25", 8, 10},
	}
	for _, tc := range cases {
		got := AwardPoints(decimal.RequireFromString(tc.quantity), tc.rate)
		require.Equal(t, tc.want, got, "quantity=%s rate=%d", tc.quantity, tc.rate)
	}
}

func TestSubmitCreatesPendingWithFixedAward(t *testing.T) {
	svc, centers, _ := newTestService(t)
	ctr := seedCenter(t, centers)
	sess := identity.Session{UserID: "user-1"}

	d, err := svc.Submit(context.Background(), sess, SubmitRequest{
		QuantityLiters: decimal.RequireFromString("5.0"),
		OilType:        MotorOil,
		CenterID:       ctr.ID,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, d.Status)
	require.Equal(t, int64(50), d.PointsEarned)
	require.Equal(t, ctr.Name, d.CenterName)
	require.Equal(t, "user-1", d.OwnerID)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	sess := identity.Session{UserID: "user-1"}

	_, err := svc.Submit(context.Background(), sess, SubmitRequest{
		QuantityLiters: decimal.RequireFromString("0.05"),
		OilType:        OilType("crude"),
	})
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
	require.Len(t, be.Details, 3)
}

func TestSubmitRejectsInactiveCenter(t *testing.T) {
	svc, centers, _ := newTestService(t)
	ctr := seedCenter(t, centers)

	inactive := false
	_, err := centers.Update(context.Background(), ctr.ID, center.UpsertRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), identity.Session{UserID: "user-1"}, SubmitRequest{
		QuantityLiters: decimal.RequireFromString("1.0"),
		OilType:        MotorOil,
		CenterID:       ctr.ID,
	})
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
}

func TestUpdateStatusKeepsAwardThroughVerification(t *testing.T) {
	svc, centers, _ := newTestService(t)
	ctr := seedCenter(t, centers)
	sess := identity.Session{UserID: "user-1"}

	d, err := svc.Submit(context.Background(), sess, SubmitRequest{
		QuantityLiters: decimal.RequireFromString("5.0"),
		OilType:        MotorOil,
		CenterID:       ctr.ID,
	})
	require.NoError(t, err)

	verified, err := svc.UpdateStatus(context.Background(), d.ID, StatusVerified)
	require.NoError(t, err)
	require.Equal(t, StatusVerified, verified.Status)
	require.Equal(t, int64(50), verified.PointsEarned)
}

func TestUpdateStatusTerminal(t *testing.T) {
	svc, centers, _ := newTestService(t)
	ctr := seedCenter(t, centers)
	sess := identity.Session{UserID: "user-1"}

	d, err := svc.Submit(context.Background(), sess, SubmitRequest{
		QuantityLiters: decimal.RequireFromString("2.0"),
		OilType:        CookingOil,
		CenterID:       ctr.ID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), d.ID, StatusRejected)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), d.ID, StatusVerified)
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusUnprocessableEntity, be.Code)
}

func TestUpdateStatusRejectsPendingTarget(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "any", StatusPending)
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusValidationFailed, be.Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "missing", StatusVerified)
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, errutil.StatusNotFound, be.Code)
}

func TestListMineScopedToOwner(t *testing.T) {
	svc, centers, _ := newTestService(t)
	ctr := seedCenter(t, centers)

	for _, user := range []string{"user-1", "user-1", "user-2"} {
		_, err := svc.Submit(context.Background(), identity.Session{UserID: user}, SubmitRequest{
			QuantityLiters: decimal.RequireFromString("1.0"),
			OilType:        MotorOil,
			CenterID:       ctr.ID,
		})
		require.NoError(t, err)
	}

	mine, err := svc.ListMine(context.Background(), identity.Session{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
}
