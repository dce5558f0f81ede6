package create2

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrAlreadyDeployed is returned when code already exists at the predicted address.
	ErrAlreadyDeployed = errors.New("contract already deployed at predicted address")
	// ErrNoCode is returned when no code is found at the address the factory reported.
	ErrNoCode = errors.New("no code at deployed address")

	errNoMatchingLog = errors.New("no Deployed log emitted by factory")
)

// EncodingError reports that the constructor arguments could not be encoded
// against the declared constructor types.
type EncodingError struct {
	// Index of the offending argument, -1 if the failure is not specific to one argument.
	Index int
	Type  string
	Err   error
}

var _ error = (*EncodingError)(nil)

func (e *EncodingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("constructor encoding failed: %v", e.Err)
	}
	return fmt.Sprintf("constructor argument %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

type NoEventFoundError struct {
	Factory common.Address
	TxHash  common.Hash
	Logs    int
	Err     error
}

var _ error = (*NoEventFoundError)(nil)

func (e *NoEventFoundError) Error() string {
	return fmt.Sprintf("no Deployed event from factory %s in tx %s (%d logs): %v", e.Factory, e.TxHash, e.Logs, e.Err)
}

func (e *NoEventFoundError) Unwrap() error {
	return e.Err
}

// AddressMismatchError reports a deployment that landed somewhere other than
// the locally predicted address. It always carries the full derivation inputs.
type AddressMismatchError struct {
	Factory      common.Address
	Salt         *uint256.Int
	InitCodeHash common.Hash
	Expected     common.Address
	Actual       common.Address
	TxHash       common.Hash
}

var _ error = (*AddressMismatchError)(nil)

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("deployed address %s does not match predicted address %s (factory %s, salt 0x%s, init code hash %s, tx %s)",
		Canonical(e.Actual), Canonical(e.Expected), Canonical(e.Factory), SaltHex(e.Salt), e.InitCodeHash, e.TxHash)
}

type RevertedError struct {
	Factory common.Address
	Salt    *uint256.Int
	TxHash  common.Hash
}

var _ error = (*RevertedError)(nil)

func (e *RevertedError) Error() string {
	return fmt.Sprintf("deployment tx %s to factory %s reverted (salt 0x%s)", e.TxHash, Canonical(e.Factory), SaltHex(e.Salt))
}
