package op_service

import (
	"strings"
)

// PrefixEnvVar returns the env var name for a flag, e.g. OP_CREATE2_RPC_URL.
func PrefixEnvVar(prefix, suffix string) []string {
	return []string{prefix + "_" + suffix}
}

// FlagNameToEnvVarName converts a flag name like "txmgr.receipt-query-interval"
// into the suffix of its env var, TXMGR_RECEIPT_QUERY_INTERVAL.
func FlagNameToEnvVarName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}
