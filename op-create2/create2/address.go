// Package create2 derives CREATE2 contract addresses and deploys contracts
// through the CREATE2 factory.
package create2

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const create2Prefix = 0xff

// preimageLen is 0xff ++ deployer ++ salt ++ keccak256(initCode).
const preimageLen = 1 + common.AddressLength + 32 + common.HashLength

// SaltBytes returns the 32 byte big-endian form of salt. A nil salt is zero.
func SaltBytes(salt *uint256.Int) [32]byte {
	if salt == nil {
		return [32]byte{}
	}
	return salt.Bytes32()
}

// SaltHex returns the salt as exactly 64 lowercase hex characters, without prefix.
func SaltHex(salt *uint256.Int) string {
	b := SaltBytes(salt)
	return hex.EncodeToString(b[:])
}

// ParseSalt parses a decimal or 0x-prefixed hex salt. Values that do not fit
// in 256 bits are rejected.
func ParseSalt(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid salt %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("salt must not be negative: %s", v)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("salt %s exceeds 256 bits", v)
	}
	return out, nil
}

// Canonical returns the lowercase 0x-prefixed text form of addr.
func Canonical(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// PredictAddress computes the address a CREATE2 of initCode with salt by the
// deployer contract results in.
func PredictAddress(deployer common.Address, salt *uint256.Int, initCode []byte) common.Address {
	return PredictAddressFromHash(deployer, salt, crypto.Keccak256Hash(initCode))
}

// PredictAddressFromHash is PredictAddress with the init code already hashed.
func PredictAddressFromHash(deployer common.Address, salt *uint256.Int, initCodeHash common.Hash) common.Address {
	saltBytes := SaltBytes(salt)

	buf := make([]byte, 0, preimageLen)
	buf = append(buf, create2Prefix)
	buf = append(buf, deployer.Bytes()...)
	buf = append(buf, saltBytes[:]...)
	buf = append(buf, initCodeHash.Bytes()...)

	return common.BytesToAddress(crypto.Keccak256(buf)[12:])
}

// ComputeAddress builds the init code from the contract bytecode and
// constructor arguments, and predicts its CREATE2 address.
func ComputeAddress(deployer common.Address, salt *uint256.Int, bytecode []byte, constructorTypes []string, constructorArgs []any) (common.Address, error) {
	initCode, err := BuildInitCode(constructorTypes, constructorArgs, bytecode)
	if err != nil {
		return common.Address{}, err
	}
	return PredictAddress(deployer, salt, initCode), nil
}
