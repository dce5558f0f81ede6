package crypto

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	hdwallet "github.com/ethereum-optimism/go-ethereum-hdwallet"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

var ErrNotAuthorized = errors.New("not authorized to sign for this address")

// SignerFn signs a transaction on behalf of the given address.
type SignerFn func(context.Context, common.Address, *types.Transaction) (*types.Transaction, error)

// SignerFactory binds a signer to a chain ID.
type SignerFactory func(chainID *big.Int) SignerFn

// PrivateKeySignerFn returns a SignerFn that signs with key, for the given chain.
func PrivateKeySignerFn(key *ecdsa.PrivateKey, chainID *big.Int) SignerFn {
	from := crypto.PubkeyToAddress(key.PublicKey)
	signer := types.LatestSignerForChainID(chainID)
	return func(_ context.Context, address common.Address, tx *types.Transaction) (*types.Transaction, error) {
		if address != from {
			return nil, ErrNotAuthorized
		}
		return types.SignTx(tx, signer, key)
	}
}

// ParsePrivateKey parses a hex encoded secp256k1 key, with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// DeriveFromMnemonic derives the private key at hdPath from a BIP-39 mnemonic.
func DeriveFromMnemonic(mnemonic, hdPath string) (*ecdsa.PrivateKey, error) {
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	acc := accounts.Account{
		URL: accounts.URL{
			Path: hdPath,
		},
	}
	privKey, err := wallet.PrivateKey(acc)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve private key for %s: %w", hdPath, err)
	}
	return privKey, nil
}

// SignerFactoryFromConfig builds a signer from either a private key or a
// mnemonic with HD path. Exactly one of the two must be set.
func SignerFactoryFromConfig(l log.Logger, privateKey, mnemonic, hdPath string) (SignerFactory, common.Address, error) {
	var privKey *ecdsa.PrivateKey
	var err error
	switch {
	case privateKey != "" && mnemonic != "":
		return nil, common.Address{}, errors.New("cannot specify both a private key and a mnemonic")
	case privateKey != "":
		privKey, err = ParsePrivateKey(privateKey)
	case mnemonic != "":
		if hdPath == "" {
			return nil, common.Address{}, errors.New("hd path is required with a mnemonic")
		}
		privKey, err = DeriveFromMnemonic(mnemonic, hdPath)
	default:
		return nil, common.Address{}, errors.New("no private key or mnemonic provided")
	}
	if err != nil {
		return nil, common.Address{}, err
	}

	from := crypto.PubkeyToAddress(privKey.PublicKey)
	l.Debug("Loaded local signer", "address", from)
	return func(chainID *big.Int) SignerFn {
		return PrivateKeySignerFn(privKey, chainID)
	}, from, nil
}
