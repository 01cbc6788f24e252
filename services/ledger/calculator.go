package ledger

import (
	"oilcycle-platform/services/disposal"
	"oilcycle-platform/services/redemption"

	"github.com/shopspring/decimal"
)

// The ledger is derived, never stored. Every figure below is a pure fold
// over the owner's disposal and redemption rows, so the balance cannot
// drift from its source records.

// ComputeEarned sums point awards on verified disposals.
func ComputeEarned(disposals []*disposal.Disposal) int64 {
	var total int64
	for _, d := range disposals {
		if d.Status == disposal.StatusVerified {
			total += d.PointsEarned
		}
	}
	return total
}

// ComputePending sums point awards still awaiting verification.
func ComputePending(disposals []*disposal.Disposal) int64 {
	var total int64
	for _, d := range disposals {
		if d.Status == disposal.StatusPending {
			total += d.PointsEarned
		}
	}
	return total
}

// ComputeSpent sums points across all redemptions regardless of status.
// A cancelled redemption still counts as spent.
func ComputeSpent(redemptions []*redemption.Redemption) int64 {
	var total int64
	for _, r := range redemptions {
		total += r.PointsSpent
	}
	return total
}

// ComputeAvailable is earned minus spent. It can be negative when an admin
// rejects a disposal after its points were already redeemed.
func ComputeAvailable(disposals []*disposal.Disposal, redemptions []*redemption.Redemption) int64 {
	return ComputeEarned(disposals) - ComputeSpent(redemptions)
}

// ComputeTotalVolume sums liters across all disposals regardless of status.
// The volume figure tracks what was physically dropped off, not what earned
// points.
func ComputeTotalVolume(disposals []*disposal.Disposal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range disposals {
		total = total.Add(d.QuantityLiters)
	}
	return total
}
