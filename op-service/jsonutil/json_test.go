package jsonutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/op-create2/op-service/ioutil"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(map[string]string{"address": "0x88dc91af2375b9c977ecc8d41d66858d7688182e"}, ioutil.ToStdOutOrFile(&buf, "-"))
	require.NoError(t, err)
	require.Equal(t, "{\n  \"address\": \"0x88dc91af2375b9c977ecc8d41d66858d7688182e\"\n}\n", buf.String())
}

func TestWriteJSONUnsupported(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, WriteJSON(make(chan int), ioutil.ToStdOutOrFile(&buf, "-")))
}
