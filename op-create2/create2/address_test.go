package create2

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	recorderCode = hexutil.MustDecode("0x602060203803600039600051600055600b601b600039600b6000f360005460005260206000f3")
	recorderArg  = common.HexToAddress("0x303de46de694cc75a2f66da93ac86c6a6eee607e")
)

func recorderInitCode(t *testing.T) []byte {
	initCode, err := BuildInitCode([]string{"address"}, []any{recorderArg.Hex()}, recorderCode)
	require.NoError(t, err)
	return initCode
}

func TestRecorderInitCodeHash(t *testing.T) {
	require.Equal(t,
		common.HexToHash("0xe6504b60f09aeacb3b8a37eaf77768007d8a6b28e4729bca2bf577064360a1f1"),
		crypto.Keccak256Hash(recorderInitCode(t)))
}

func TestPredictAddress(t *testing.T) {
	initCode := recorderInitCode(t)
	flipped := append([]byte{}, initCode...)
	flipped[0] ^= 0x01

	tests := []struct {
		name     string
		salt     *uint256.Int
		initCode []byte
		expected string
	}{
		{name: "salt 1", salt: uint256.NewInt(1), initCode: initCode, expected: "0x88dc91af2375b9c977ecc8d41d66858d7688182e"},
		{name: "salt 0", salt: uint256.NewInt(0), initCode: initCode, expected: "0x7166d7172be0494c34a78817ae0b2da8dd9df11e"},
		{name: "nil salt is zero", salt: nil, initCode: initCode, expected: "0x7166d7172be0494c34a78817ae0b2da8dd9df11e"},
		{name: "salt 2", salt: uint256.NewInt(2), initCode: initCode, expected: "0x1037175bc12e236a3a435d249262b05321252215"},
		{name: "max salt", salt: new(uint256.Int).SetAllOne(), initCode: initCode, expected: "0xe5d2716cc523c959afe89bf65d9ffcee52a20e56"},
		{name: "without constructor args", salt: uint256.NewInt(1), initCode: recorderCode, expected: "0xe3789761c47ff52d6b9601223bf757a865c44676"},
		{name: "one bit flipped", salt: uint256.NewInt(1), initCode: flipped, expected: "0x77b93b421e02e711b62557eda552c96640f39e35"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := PredictAddress(FactoryAddress, tt.salt, tt.initCode)
			require.Equal(t, tt.expected, Canonical(addr))
		})
	}
}

func TestPredictAddressEIP1014(t *testing.T) {
	tests := []struct {
		deployer string
		salt     uint64
		initCode string
		expected string
	}{
		{"0x0000000000000000000000000000000000000000", 0, "0x00", "0x4d1a2e2bb4f88f0250f26ffff098b0b30b26bf38"},
		{"0xdeadbeef00000000000000000000000000000000", 0, "0x00", "0xb928f69bb1d91cd65274e3c79d8986362984fda3"},
		{"0x00000000000000000000000000000000deadbeef", 0xcafebabe, "0xdeadbeef", "0x60f3f640a8508fc6a86d45df051962668e1e8ac7"},
		{"0x00000000000000000000000000000000deadbeef", 0xcafebabe,
			"0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
			"0x1d8bfdc5d46dc4f61d6b6115972536ebe6a8854c"},
		{"0x0000000000000000000000000000000000000000", 0, "0x", "0xe33c0c7f7df4809055c3eba6c09cfe4baf1bd9e0"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			deployer := common.HexToAddress(tt.deployer)
			salt := uint256.NewInt(tt.salt)
			code := hexutil.MustDecode(tt.initCode)

			addr := PredictAddress(deployer, salt, code)
			require.Equal(t, tt.expected, Canonical(addr))
			require.Equal(t, crypto.CreateAddress2(deployer, salt.Bytes32(), crypto.Keccak256(code)), addr)
			require.Equal(t, addr, PredictAddressFromHash(deployer, salt, crypto.Keccak256Hash(code)))
		})
	}
}

func TestPredictAddressDependsOnDeployer(t *testing.T) {
	initCode := recorderInitCode(t)
	a := PredictAddress(FactoryAddress, uint256.NewInt(1), initCode)
	b := PredictAddress(common.Address{0x01}, uint256.NewInt(1), initCode)
	require.NotEqual(t, a, b)
	require.Equal(t, a, PredictAddress(FactoryAddress, uint256.NewInt(1), initCode))
}

func TestComputeAddress(t *testing.T) {
	addr, err := ComputeAddress(FactoryAddress, uint256.NewInt(1), recorderCode, []string{"address"}, []any{recorderArg})
	require.NoError(t, err)
	require.Equal(t, "0x88dc91af2375b9c977ecc8d41d66858d7688182e", Canonical(addr))

	_, err = ComputeAddress(FactoryAddress, uint256.NewInt(1), recorderCode, []string{"address"}, nil)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestSaltHex(t *testing.T) {
	require.Equal(t, "0000000000000000000000000000000000000000000000000000000000000001", SaltHex(uint256.NewInt(1)))
	require.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", SaltHex(nil))
	require.Equal(t, "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", SaltHex(new(uint256.Int).SetAllOne()))
	require.Len(t, SaltHex(uint256.NewInt(0xcafebabe)), 64)
}

func TestParseSalt(t *testing.T) {
	tests := []struct {
		in  string
		exp *uint256.Int
		err bool
	}{
		{in: "1", exp: uint256.NewInt(1)},
		{in: "0x01", exp: uint256.NewInt(1)},
		{in: " 255 ", exp: uint256.NewInt(255)},
		{in: "0xcafebabe", exp: uint256.NewInt(0xcafebabe)},
		{in: "0x" + SaltHex(new(uint256.Int).SetAllOne()), exp: new(uint256.Int).SetAllOne()},
		{in: "", err: true},
		{in: "abc", err: true},
		{in: "-1", err: true},
		{in: "0x1" + SaltHex(nil), err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			salt, err := ParseSalt(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.exp, salt)
		})
	}
}

func TestCanonical(t *testing.T) {
	require.Equal(t, "0x4a27c059fd7e383854ea7de6be9c390a795f6ee3", Canonical(FactoryAddress))
}
