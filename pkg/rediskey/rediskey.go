package rediskey

import "fmt"

// Ledger keys (shared convention between the ledger service and everything
// that invalidates its snapshot cache).
const (
	LedgerSnapshotPrefix = "ledger:snapshot"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildLedgerSnapshotKey returns "ledger:snapshot:{userID}"
func BuildLedgerSnapshotKey(userID string) string {
	return NamespaceKey(LedgerSnapshotPrefix, userID)
}
