package create2

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// FactoryAddress is the well-known address of the CREATE2 factory. It is the
// address the bootstrap key creates at nonce 0, so it is identical on every
// chain the factory was bootstrapped on.
var FactoryAddress = common.HexToAddress("0x4a27c059FD7E383854Ea7DE6Be9c390a795f6eE3")

// BootstrapKeyHex is the publicly known key that deploys the factory. It must
// never hold funds beyond what the factory deployment costs.
const BootstrapKeyHex = "0x563905A5FBF71C05A44BE9240E62DBD777D69A2E20D702AA584841AF7C04E939"

var BootstrapAddress = common.HexToAddress("0x2287Fa6efdEc6d8c3E0f4612ce551dEcf89A357A")

// FactoryBytecode is the creation code of the factory (solc 0.5.17).
var FactoryBytecode = hexutil.MustDecode("0x608060405234801561001057600080fd5b506101b3806100206000396000f3fe608060405234801561001057600080fd5b506004361061002b5760003560e01c80639c4ae2d014610030575b600080fd5b6100f36004803603604081101561004657600080fd5b810190808035906020019064010000000081111561006357600080fd5b82018360208201111561007557600080fd5b8035906020019184600183028401116401000000008311171561009757600080fd5b91908080601f016020809104026020016040519081016040528093929190818152602001838380828437600081840152601f19601f820116905080830192505050505050509192919290803590602001909291905050506100f5565b005b6000818351602085016000f59050803b61010e57600080fd5b7fb03c53b28e78a88e31607a27e1fa48234dce28d5d9d9ec7b295aeb02e674a1e18183604051808373ffffffffffffffffffffffffffffffffffffffff1673ffffffffffffffffffffffffffffffffffffffff1681526020018281526020019250505060405180910390a150505056fea265627a7a72315820d9c09b41b3c6591ba80cae0b1fbcba221c30c329fceb03a0352e0f93fb79893264736f6c63430005110032")

const FactoryABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "addr", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "salt", "type": "uint256"}
    ],
    "name": "Deployed",
    "type": "event"
  },
  {
    "constant": false,
    "inputs": [
      {"internalType": "bytes", "name": "code", "type": "bytes"},
      {"internalType": "uint256", "name": "salt", "type": "uint256"}
    ],
    "name": "deploy",
    "outputs": [],
    "payable": false,
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

var FactoryABI = mustParseABI(FactoryABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Errorf("failed to parse factory ABI: %w", err))
	}
	return parsed
}

// DeployedEvent is the decoded form of the factory's Deployed log.
type DeployedEvent struct {
	Addr common.Address
	Salt *uint256.Int
}

// PackDeploy returns the calldata of deploy(initCode, salt).
func PackDeploy(initCode []byte, salt *uint256.Int) ([]byte, error) {
	if salt == nil {
		salt = new(uint256.Int)
	}
	return FactoryABI.Pack("deploy", initCode, salt.ToBig())
}

// ParseDeployedEvent returns the first Deployed event emitted by factory in
// the given logs.
func ParseDeployedEvent(factory common.Address, logs []*types.Log) (*DeployedEvent, error) {
	event := FactoryABI.Events["Deployed"]
	var lastErr error
	for _, l := range logs {
		if l == nil || l.Address != factory || len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		values, err := event.Inputs.Unpack(l.Data)
		if err != nil {
			lastErr = fmt.Errorf("failed to unpack Deployed log %d: %w", l.Index, err)
			continue
		}
		addr, ok := values[0].(common.Address)
		if !ok {
			lastErr = fmt.Errorf("unexpected Deployed addr type %T", values[0])
			continue
		}
		out := &DeployedEvent{Addr: addr, Salt: new(uint256.Int)}
		if salt, ok := values[1].(*big.Int); ok {
			out.Salt.SetFromBig(salt)
		}
		return out, nil
	}
	if lastErr == nil {
		lastErr = errNoMatchingLog
	}
	return nil, lastErr
}
