package create2

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/op-create2/op-service/testutils"
)

func TestLoadBytecode(t *testing.T) {
	for _, name := range []string{"recorder.json", "recorder.forge.json", "recorder.hex"} {
		t.Run(name, func(t *testing.T) {
			code, err := LoadBytecode(filepath.Join("testdata", name))
			require.NoError(t, err)
			require.Equal(t, recorderCode, code)
		})
	}
}

func TestLoadBytecodeErrors(t *testing.T) {
	dir := testutils.IsolatedTestDirWithAutoCleanup(t)

	_, err := LoadBytecode(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty.hex", content: "\n"},
		{name: "prefix-only.hex", content: "0x"},
		{name: "bad.hex", content: "0xzz"},
		{name: "no-bytecode.json", content: `{"abi": []}`},
		{name: "bad-object.json", content: `{"bytecode": 12}`},
		{name: "broken.json", content: `{"bytecode":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutils.WriteTestFile(t, dir, tt.name, tt.content)
			_, err := LoadBytecode(path)
			require.Error(t, err)
		})
	}
}

func TestDecodeArtifactEmpty(t *testing.T) {
	_, err := DecodeArtifact([]byte("0x"))
	require.ErrorIs(t, err, ErrEmptyBytecode)
	_, err = DecodeArtifact([]byte(`{"bytecode":{"object":"0x"}}`))
	require.ErrorIs(t, err, ErrEmptyBytecode)
}
