package op_service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixEnvVar(t *testing.T) {
	require.Equal(t, []string{"OP_CREATE2_RPC_URL"}, PrefixEnvVar("OP_CREATE2", "RPC_URL"))
}

func TestFlagNameToEnvVarName(t *testing.T) {
	require.Equal(t, "TXMGR_RECEIPT_QUERY_INTERVAL", FlagNameToEnvVarName("txmgr.receipt-query-interval"))
	require.Equal(t, "SALT", FlagNameToEnvVarName("salt"))
}

func TestFormatVersion(t *testing.T) {
	require.Equal(t, "v1.2.3", FormatVersion("v1.2.3", "", "", ""))
	require.Equal(t, "v1.2.3-abcdef01-1700000000-dev", FormatVersion("v1.2.3", "abcdef0123456789", "1700000000", "dev"))
	require.Equal(t, "v1.2.3-abc", FormatVersion("v1.2.3", "abc", "", ""))
}
