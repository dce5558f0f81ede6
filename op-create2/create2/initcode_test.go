package create2

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func packArgs(t *testing.T, types []string, values ...any) []byte {
	args := make(abi.Arguments, 0, len(types))
	for _, s := range types {
		typ, err := abi.NewType(s, "", nil)
		require.NoError(t, err)
		args = append(args, abi.Argument{Type: typ})
	}
	out, err := args.Pack(values...)
	require.NoError(t, err)
	return out
}

func TestBuildInitCodeAddressArg(t *testing.T) {
	initCode := recorderInitCode(t)
	require.Len(t, initCode, len(recorderCode)+32)
	require.Equal(t, recorderCode, initCode[:len(recorderCode)])
	require.Equal(t, common.LeftPadBytes(recorderArg.Bytes(), 32), initCode[len(recorderCode):])
}

func TestBuildInitCodeWithoutArgs(t *testing.T) {
	initCode, err := BuildInitCode(nil, nil, recorderCode)
	require.NoError(t, err)
	require.Equal(t, recorderCode, initCode)

	initCode[0] = 0x00
	require.Equal(t, byte(0x60), recorderCode[0], "result must not alias the input")

	empty, err := BuildInitCode(nil, nil, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestBuildInitCodeMismatch(t *testing.T) {
	_, err := BuildInitCode([]string{"address", "uint256"}, []any{recorderArg}, recorderCode)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, -1, encErr.Index)
}

func TestBuildInitCodeInvalidArgs(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		args  []any
		index int
	}{
		{name: "unknown type", types: []string{"foo"}, args: []any{"1"}, index: 0},
		{name: "bad address", types: []string{"address"}, args: []any{"0x1234"}, index: 0},
		{name: "address of wrong kind", types: []string{"address"}, args: []any{42}, index: 0},
		{name: "uint8 overflow", types: []string{"bool", "uint8"}, args: []any{true, "256"}, index: 1},
		{name: "negative uint", types: []string{"uint256"}, args: []any{"-1"}, index: 0},
		{name: "int8 underflow", types: []string{"int8"}, args: []any{"-129"}, index: 0},
		{name: "not a number", types: []string{"uint256"}, args: []any{"ten"}, index: 0},
		{name: "bytes32 too short", types: []string{"bytes32"}, args: []any{"0x1234"}, index: 0},
		{name: "bad bool", types: []string{"bool"}, args: []any{"maybe"}, index: 0},
		{name: "string from number", types: []string{"string"}, args: []any{12}, index: 0},
		{name: "fixed array length", types: []string{"uint256[2]"}, args: []any{"[1,2,3]"}, index: 0},
		{name: "bad array element", types: []string{"address[]"}, args: []any{[]any{"0x01"}}, index: 0},
		{name: "nil arg", types: []string{"uint256"}, args: []any{nil}, index: 0},
		{name: "uint256 overflow as big.Int", types: []string{"uint256"}, args: []any{new(big.Int).Lsh(big.NewInt(1), 256)}, index: 0},
		{name: "uint128 overflow as big.Int", types: []string{"address", "uint128"}, args: []any{recorderArg, new(big.Int).Lsh(big.NewInt(1), 200)}, index: 1},
		{name: "int256 overflow as big.Int", types: []string{"int256"}, args: []any{new(big.Int).Lsh(big.NewInt(1), 255)}, index: 0},
		{name: "negative uint as big.Int", types: []string{"uint256"}, args: []any{big.NewInt(-1)}, index: 0},
		{name: "uint array element overflow", types: []string{"uint8[]"}, args: []any{[]*big.Int{big.NewInt(300)}}, index: 0},
		{name: "tuple without components", types: []string{"tuple"}, args: []any{"[]"}, index: 0},
		{name: "unbalanced tuple", types: []string{"(uint256,address"}, args: []any{"[1]"}, index: 0},
		{name: "empty tuple component", types: []string{"(uint256,)"}, args: []any{"[1]"}, index: 0},
		{name: "tuple component count", types: []string{"(uint256,address)"}, args: []any{"[1]"}, index: 0},
		{name: "bad tuple component", types: []string{"(uint256,address)"}, args: []any{[]any{"1", "0x01"}}, index: 0},
		{name: "tuple from scalar", types: []string{"(uint256)"}, args: []any{7}, index: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildInitCode(tt.types, tt.args, recorderCode)
			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			require.Equal(t, tt.index, encErr.Index)
			require.Equal(t, tt.types[tt.index], encErr.Type)
		})
	}
}

func TestBuildInitCodeCoercion(t *testing.T) {
	addrs := []common.Address{{0x01}, {0x02}}
	tests := []struct {
		name     string
		types    []string
		args     []any
		expected []byte
	}{
		{
			name:     "integers from text",
			types:    []string{"uint256", "int256", "uint8"},
			args:     []any{"0x10", "-5", "255"},
			expected: packArgs(t, []string{"uint256", "int256", "uint8"}, big.NewInt(16), big.NewInt(-5), uint8(255)),
		},
		{
			name:     "integers from config values",
			types:    []string{"uint256", "uint64", "int32"},
			args:     []any{int64(7), int64(8), int64(-9)},
			expected: packArgs(t, []string{"uint256", "uint64", "int32"}, big.NewInt(7), uint64(8), int32(-9)),
		},
		{
			name:     "uint256 value",
			types:    []string{"uint256"},
			args:     []any{new(uint256.Int).SetAllOne()},
			expected: packArgs(t, []string{"uint256"}, new(uint256.Int).SetAllOne().ToBig()),
		},
		{
			name:     "bool string and bytes",
			types:    []string{"bool", "string", "bytes"},
			args:     []any{"true", "hello", "0xdeadbeef"},
			expected: packArgs(t, []string{"bool", "string", "bytes"}, true, "hello", []byte{0xde, 0xad, 0xbe, 0xef}),
		},
		{
			name:     "fixed bytes",
			types:    []string{"bytes4", "bytes32"},
			args:     []any{"0xdeadbeef", common.Hash{0xaa}},
			expected: packArgs(t, []string{"bytes4", "bytes32"}, [4]byte{0xde, 0xad, 0xbe, 0xef}, [32]byte{0xaa}),
		},
		{
			name:     "address slice from JSON",
			types:    []string{"address[]"},
			args:     []any{`["0x0100000000000000000000000000000000000000","0x0200000000000000000000000000000000000000"]`},
			expected: packArgs(t, []string{"address[]"}, addrs),
		},
		{
			name:     "address slice from config array",
			types:    []string{"address[]"},
			args:     []any{[]any{addrs[0].Hex(), addrs[1].Hex()}},
			expected: packArgs(t, []string{"address[]"}, addrs),
		},
		{
			name:     "fixed uint array",
			types:    []string{"uint256[2]"},
			args:     []any{"[1, 2]"},
			expected: packArgs(t, []string{"uint256[2]"}, [2]*big.Int{big.NewInt(1), big.NewInt(2)}),
		},
		{
			name:     "static tuple from JSON",
			types:    []string{"(uint256,address)"},
			args:     []any{`[5, "0x0100000000000000000000000000000000000000"]`},
			expected: packArgs(t, []string{"uint256", "address"}, big.NewInt(5), addrs[0]),
		},
		{
			name:     "nested tuple from config array",
			types:    []string{"tuple(address,(uint8,bool))"},
			args:     []any{[]any{addrs[1].Hex(), []any{int64(9), true}}},
			expected: packArgs(t, []string{"address", "uint8", "bool"}, addrs[1], uint8(9), true),
		},
		{
			name:     "tuple slice",
			types:    []string{"(uint256,uint256)[]"},
			args:     []any{`[[1, 2], [3, 4]]`},
			expected: packArgs(t, []string{"uint256[2][]"}, [][2]*big.Int{{big.NewInt(1), big.NewInt(2)}, {big.NewInt(3), big.NewInt(4)}}),
		},
		{
			name:     "max uint256 as big.Int",
			types:    []string{"uint256"},
			args:     []any{new(uint256.Int).SetAllOne().ToBig()},
			expected: packArgs(t, []string{"uint256"}, new(uint256.Int).SetAllOne().ToBig()),
		},
		{
			name:     "native go values",
			types:    []string{"address", "uint256"},
			args:     []any{addrs[0], big.NewInt(3)},
			expected: packArgs(t, []string{"address", "uint256"}, addrs[0], big.NewInt(3)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initCode, err := BuildInitCode(tt.types, tt.args, recorderCode)
			require.NoError(t, err)
			require.Equal(t, append(append([]byte{}, recorderCode...), tt.expected...), initCode)
		})
	}
}

func TestParseBytecode(t *testing.T) {
	for _, in := range []string{
		"0x602060203803600039600051600055600b601b600039600b6000f360005460005260206000f3",
		"602060203803600039600051600055600b601b600039600b6000f360005460005260206000f3",
		"  0x602060203803600039600051600055600b601b600039600b6000f360005460005260206000f3\n",
	} {
		code, err := ParseBytecode(in)
		require.NoError(t, err)
		require.Equal(t, recorderCode, code)
	}
	_, err := ParseBytecode("0x123")
	require.Error(t, err)
	_, err = ParseBytecode("zz")
	require.Error(t, err)
}
