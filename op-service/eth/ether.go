package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/params"
)

var (
	HundredEther = Ether(100)
	TenEther     = Ether(10)
	OneEther     = Ether(1)
	OneGWei      = GWei(1)
	ZeroWei      = WeiU64(0)
)

var (
	weiPerGWei = uint256.NewInt(params.GWei)
	weiPerEth  = uint256.NewInt(params.Ether)
)

// ETH is a typed amount of ETH, expressed in number of wei.
// Methods return new values instead of mutating in-place.
type ETH uint256.Int

// String prints the amount with thousands separators, in the largest of
// ether, gwei or wei that represents it exactly.
func (e ETH) String() string {
	vWei := (*uint256.Int)(&e)
	if vWei.Sign() == 0 {
		return "0 wei"
	}
	var vGWei, remainder uint256.Int
	vGWei.DivMod(vWei, weiPerGWei, &remainder)
	if remainder.Sign() != 0 {
		return vWei.PrettyDec(',') + " wei"
	}
	var vEth uint256.Int
	vEth.DivMod(vWei, weiPerEth, &remainder)
	if remainder.Sign() == 0 {
		return vEth.PrettyDec(',') + " ether"
	}
	return vGWei.PrettyDec(',') + " gwei"
}

// WeiFloat returns the approximate amount in wei, for metrics.
func (e ETH) WeiFloat() float64 {
	return (*uint256.Int)(&e).Float64()
}

// ToBig converts to *big.Int, in wei.
func (e ETH) ToBig() *big.Int {
	return (*uint256.Int)(&e).ToBig()
}

// SubUnderflow subtracts v and reports whether the result wrapped around.
func (e ETH) SubUnderflow(v ETH) (out ETH, underflow bool) {
	_, underflow = (*uint256.Int)(&out).SubOverflow((*uint256.Int)(&e), (*uint256.Int)(&v))
	return
}

// Sub subtracts v and panics on underflow.
func (e ETH) Sub(v ETH) ETH {
	out, underflow := e.SubUnderflow(v)
	if underflow {
		panic(fmt.Errorf("sub underflow: %s - %s", e, v))
	}
	return out
}

func (e ETH) Lt(v ETH) bool {
	return (*uint256.Int)(&e).Lt((*uint256.Int)(&v))
}

func (e ETH) IsZero() bool {
	return (*uint256.Int)(&e).IsZero()
}

// UnmarshalText accepts a plain wei amount in decimal or 0x hex, or an
// integer amount followed by a unit: "2 ether", "30gwei", "7 wei".
func (e *ETH) UnmarshalText(data []byte) error {
	out, err := ParseETH(string(data))
	if err != nil {
		return err
	}
	*e = out
	return nil
}

// MarshalText marshals the amount of wei as a decimal number.
func (e ETH) MarshalText() ([]byte, error) {
	return (*uint256.Int)(&e).MarshalText()
}

func ParseETH(s string) (ETH, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	unit := weiPerGWei
	switch {
	case strings.HasSuffix(s, "ether"):
		s, unit = strings.TrimSpace(strings.TrimSuffix(s, "ether")), weiPerEth
	case strings.HasSuffix(s, "gwei"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "gwei"))
	case strings.HasSuffix(s, "wei"):
		s, unit = strings.TrimSpace(strings.TrimSuffix(s, "wei")), uint256.NewInt(1)
	default:
		unit = uint256.NewInt(1)
	}

	var amount uint256.Int
	if err := amount.UnmarshalText([]byte(s)); err != nil {
		return ETH{}, fmt.Errorf("invalid ETH amount %q: %w", s, err)
	}
	if _, overflow := amount.MulOverflow(&amount, unit); overflow {
		return ETH{}, fmt.Errorf("ETH amount %q overflows uint256", s)
	}
	return ETH(amount), nil
}

// WeiBig turns the given big.Int amount of wei into ETH-typed wei.
// This panics if the amount does not fit in 256 bits, or if it is negative.
func WeiBig(wei *big.Int) (out ETH) {
	if wei == nil {
		panic("nil *big.Int input to ETH constructor")
	}
	if wei.Sign() < 0 {
		panic("negative amounts are not supported")
	}
	if overflow := (*uint256.Int)(&out).SetFromBig(wei); overflow {
		panic("*big.Int input does not fit in uint256")
	}
	return
}

func WeiU64(wei uint64) (out ETH) {
	(*uint256.Int)(&out).SetUint64(wei)
	return
}

func GWei(gwei uint64) ETH {
	var x uint256.Int
	x.SetUint64(gwei)
	x.Mul(&x, weiPerGWei)
	return ETH(x)
}

func Ether(ether uint64) ETH {
	var x uint256.Int
	x.SetUint64(ether)
	x.Mul(&x, weiPerEth)
	return ETH(x)
}
