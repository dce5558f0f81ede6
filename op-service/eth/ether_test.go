package eth

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestETHString(t *testing.T) {
	require.Equal(t, "0 wei", ZeroWei.String())
	require.Equal(t, "1 ether", OneEther.String())
	require.Equal(t, "100 ether", HundredEther.String())
	require.Equal(t, "1 gwei", OneGWei.String())
	require.Equal(t, "1,500,000,000 gwei", GWei(1_500_000_000).String())
	require.Equal(t, "1,234 wei", WeiU64(1234).String())
}

func TestParseETH(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want ETH
		err  bool
	}{
		{in: "1 ether", want: OneEther},
		{in: "2ether", want: Ether(2)},
		{in: "30 gwei", want: GWei(30)},
		{in: "7 wei", want: WeiU64(7)},
		{in: "1000", want: WeiU64(1000)},
		{in: "0x10", want: WeiU64(16)},
		{in: "1.5 ether", err: true},
		{in: "lots", err: true},
		{in: "115792089237316195423570985008687907853269984665640564039457584007913129639935 ether", err: true},
	} {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseETH(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestETHArithmetic(t *testing.T) {
	require.Equal(t, Ether(9), TenEther.Sub(OneEther))
	_, underflow := OneEther.SubUnderflow(TenEther)
	require.True(t, underflow)
	require.Panics(t, func() { OneEther.Sub(TenEther) })
	require.True(t, OneGWei.Lt(OneEther))
	require.False(t, OneEther.Lt(OneEther))
	require.True(t, ZeroWei.IsZero())
	require.Equal(t, big.NewInt(1e18), OneEther.ToBig())
	require.Equal(t, OneEther, WeiBig(big.NewInt(1e18)))
	require.Panics(t, func() { WeiBig(big.NewInt(-1)) })
}

func TestETHText(t *testing.T) {
	var v ETH
	require.NoError(t, v.UnmarshalText([]byte("3 gwei")))
	require.Equal(t, GWei(3), v)
	out, err := v.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "3000000000", string(out))
}
