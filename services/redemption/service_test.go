package redemption

import (
	"context"
	"testing"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/errutil"
	"oilcycle-platform/services/disposal"
	"oilcycle-platform/services/identity"
	"oilcycle-platform/services/reward"
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
	cfg.Points.CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	cfg.Points.CodeLength = 8
	cfg.Points.CodeMaxRetry = 5
	return cfg
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Redemption{}, &reward.Reward{}, &disposal.Disposal{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParams{DB: db, Node: node, Config: testConfig()})
	return svc, db
}

func seedVerifiedDisposal(t *testing.T, db *gorm.DB, userID string, points int64) {
	t.Helper()
	require.NoError(t, db.Create(&disposal.Disposal{
		ID:             snowflakeID(t),
		OwnerID:        userID,
		QuantityLiters: decimal.RequireFromString("1.0"),
		OilType:        disposal.MotorOil,
		CenterID:       "center-1",
		Status:         disposal.StatusVerified,
		PointsEarned:   points,
	}).Error)
}

func seedReward(t *testing.T, db *gorm.DB, points int64, stock *int64) *reward.Reward {
	t.Helper()
	rw := &reward.Reward{
		ID:             snowflakeID(t),
		Title:          "Car Wash Voucher",
		PointsRequired: points,
		Category:       reward.CategoryDiscount,
		Stock:          stock,
		IsActive:       true,
	}
	require.NoError(t, db.Create(rw).Error)
	return rw
}

var node *snowflake.Node

func snowflakeID(t *testing.T) string {
	t.Helper()
	if node == nil {
		var err error
		node, err = snowflake.NewNode(2)
		require.NoError(t, err)
	}
	return node.Generate().String()
}

func statusOf(t *testing.T, err error) errutil.CoreStatus {
	t.Helper()
	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	return be.Code
}

func TestRedeemInsufficientPointsLeavesNoRecord(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 40)
	rw := seedReward(t, db, 50, nil)

	_, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.Equal(t, errutil.StatusInsufficientPoints, statusOf(t, err))

	var count int64
	require.NoError(t, db.Model(&Redemption{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRedeemSuccessDecrementsStockAndSpendsPoints(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 100)
	stock := int64(3)
	rw := seedReward(t, db, 60, &stock)

	rd, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.NoError(t, err)
	require.Equal(t, StatusPending, rd.Status)
	require.Equal(t, int64(60), rd.PointsSpent)
	require.Equal(t, rw.Title, rd.RewardTitle)
	require.Len(t, rd.RedemptionCode, 8)

	var after reward.Reward
	require.NoError(t, db.First(&after, "id = ?", rw.ID).Error)
	require.NotNil(t, after.Stock)
	require.Equal(t, int64(2), *after.Stock)

	// 100 earned minus 60 spent leaves 40, not enough for another 60.
	_, err = svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.Equal(t, errutil.StatusInsufficientPoints, statusOf(t, err))
}

func TestRedeemOutOfStock(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 500)
	stock := int64(0)
	rw := seedReward(t, db, 50, &stock)

	_, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.Equal(t, errutil.StatusStockUnavailable, statusOf(t, err))
}

func TestRedeemUnlimitedStock(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 500)
	rw := seedReward(t, db, 50, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
		require.NoError(t, err)
	}

	var after reward.Reward
	require.NoError(t, db.First(&after, "id = ?", rw.ID).Error)
	require.Nil(t, after.Stock)
}

func TestRedeemInactiveReward(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 500)
	rw := seedReward(t, db, 50, nil)
	require.NoError(t, db.Model(&reward.Reward{}).Where("id = ?", rw.ID).Update("is_active", false).Error)

	_, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.Equal(t, errutil.StatusUnprocessableEntity, statusOf(t, err))
}

func TestRedeemUnknownReward(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: "missing"})
	require.Equal(t, errutil.StatusNotFound, statusOf(t, err))
}

func TestRedemptionCodesAreUnique(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 1000)
	rw := seedReward(t, db, 10, nil)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		rd, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
		require.NoError(t, err)
		require.False(t, seen[rd.RedemptionCode])
		seen[rd.RedemptionCode] = true
	}
}

func TestRedeemCodeCollisionRetriesThenRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t, &Redemption{}, &reward.Reward{}, &disposal.Disposal{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	// A one-character alphabet makes every generated code collide with the
	// pre-seeded one, exhausting the retry budget.
	cfg := testConfig()
	cfg.Points.CodeAlphabet = "A"
	cfg.Points.CodeLength = 1
	cfg.Points.CodeMaxRetry = 3
	svc := NewService(ServiceParams{DB: db, Node: node, Config: cfg})

	seedVerifiedDisposal(t, db, "user-1", 500)
	stock := int64(5)
	rw := seedReward(t, db, 50, &stock)

	require.NoError(t, db.Create(&Redemption{
		ID:             snowflakeID(t),
		OwnerID:        "user-2",
		RewardID:       rw.ID,
		PointsSpent:    50,
		RedemptionCode: "A",
		Status:         StatusPending,
	}).Error)

	_, err = svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.Equal(t, errutil.StatusInternal, statusOf(t, err))

	// The whole transaction rolled back: no record for user-1 and the stock
	// decrement was undone.
	var count int64
	require.NoError(t, db.Model(&Redemption{}).Where("owner_id = ?", "user-1").Count(&count).Error)
	require.Zero(t, count)

	var after reward.Reward
	require.NoError(t, db.First(&after, "id = ?", rw.ID).Error)
	require.NotNil(t, after.Stock)
	require.Equal(t, int64(5), *after.Stock)
}

func TestCancelDoesNotRefund(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 100)
	rw := seedReward(t, db, 60, nil)

	rd, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(context.Background(), rd.ID, StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// The spend still counts: 40 left is not enough for another 60.
	_, err = svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.Equal(t, errutil.StatusInsufficientPoints, statusOf(t, err))
}

func TestUpdateStatusTerminal(t *testing.T) {
	svc, db := newTestService(t)
	seedVerifiedDisposal(t, db, "user-1", 100)
	rw := seedReward(t, db, 60, nil)

	rd, err := svc.Redeem(context.Background(), identity.Session{UserID: "user-1"}, RedeemRequest{RewardID: rw.ID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), rd.ID, StatusFulfilled)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), rd.ID, StatusCancelled)
	require.Equal(t, errutil.StatusUnprocessableEntity, statusOf(t, err))
}

func TestUpdateStatusRejectsPendingTarget(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "any", StatusPending)
	require.Equal(t, errutil.StatusValidationFailed, statusOf(t, err))
}
