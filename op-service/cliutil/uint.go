package cliutil

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var ErrFlagBlank = errors.New("cannot parse blank integer flag")

// ParseUint256 parses a decimal or 0x-prefixed hex string into a 256-bit
// unsigned integer.
func ParseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrFlagBlank
	}
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("integer %q must not be negative", s)
	}
	out, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("integer %q does not fit in 256 bits", s)
	}
	return out, nil
}

// Uint256Flag reads the named string flag as a 256-bit unsigned integer.
func Uint256Flag(cliCtx *cli.Context, flagName string) (*uint256.Int, error) {
	v, err := ParseUint256(cliCtx.String(flagName))
	if err != nil {
		return nil, fmt.Errorf("flag %s: %w", flagName, err)
	}
	return v, nil
}
