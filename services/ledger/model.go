package ledger

import "github.com/shopspring/decimal"

// Snapshot is the derived view of one user's points ledger.
type Snapshot struct {
	Earned           int64           `json:"earned"`
	Pending          int64           `json:"pending"`
	Spent            int64           `json:"spent"`
	Available        int64           `json:"available"`
	TotalVolumeLiter decimal.Decimal `json:"total_volume_liters"`
	DisposalCount    int             `json:"disposal_count"`
}
