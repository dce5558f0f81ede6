package crypto

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/op-create2/op-service/testlog"
)

const (
	testMnemonic = "test test test test test test test test test test test junk"
	testHDPath   = "m/44'/60'/0'/0/0"
)

func TestDeriveFromMnemonic(t *testing.T) {
	key, err := DeriveFromMnemonic(testMnemonic, testHDPath)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), crypto.PubkeyToAddress(key.PublicKey))

	_, err = DeriveFromMnemonic(testMnemonic, "not a path")
	require.Error(t, err)
}

func TestParsePrivateKey(t *testing.T) {
	key, err := ParsePrivateKey("0x563905A5FBF71C05A44BE9240E62DBD777D69A2E20D702AA584841AF7C04E939")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x2287Fa6efdEc6d8c3E0f4612ce551dEcf89A357A"), crypto.PubkeyToAddress(key.PublicKey))

	_, err = ParsePrivateKey("0x1234")
	require.Error(t, err)
}

func TestSignerFactoryFromConfig(t *testing.T) {
	lgr := testlog.Logger(t, log.LevelInfo)

	t.Run("mnemonic", func(t *testing.T) {
		factory, from, err := SignerFactoryFromConfig(lgr, "", testMnemonic, testHDPath)
		require.NoError(t, err)
		require.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), from)

		chainID := big.NewInt(1337)
		tx := types.NewTx(&types.DynamicFeeTx{ChainID: chainID, Nonce: 3, Gas: 21000})
		signed, err := factory(chainID)(context.Background(), from, tx)
		require.NoError(t, err)
		sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
		require.NoError(t, err)
		require.Equal(t, from, sender)

		_, err = factory(chainID)(context.Background(), common.Address{0xaa}, tx)
		require.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("both set", func(t *testing.T) {
		_, _, err := SignerFactoryFromConfig(lgr, "0x01", testMnemonic, testHDPath)
		require.Error(t, err)
	})

	t.Run("none set", func(t *testing.T) {
		_, _, err := SignerFactoryFromConfig(lgr, "", "", "")
		require.Error(t, err)
	})

	t.Run("mnemonic without path", func(t *testing.T) {
		_, _, err := SignerFactoryFromConfig(lgr, "", testMnemonic, "")
		require.Error(t, err)
	})
}
