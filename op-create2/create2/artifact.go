package create2

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrEmptyBytecode = errors.New("empty bytecode")

type hardhatArtifact struct {
	Bytecode json.RawMessage `json:"bytecode"`
}

type foundryBytecode struct {
	Object string `json:"object"`
}

// LoadBytecode reads contract creation code from path. The file holds either
// plain hex, a Hardhat artifact or a Foundry artifact.
func LoadBytecode(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bytecode file: %w", err)
	}
	code, err := DecodeArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode file %s: %w", path, err)
	}
	return code, nil
}

func DecodeArtifact(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyBytecode
	}

	var hexStr string
	if data[0] == '{' {
		var art hardhatArtifact
		if err := json.Unmarshal(data, &art); err != nil {
			return nil, fmt.Errorf("failed to decode artifact: %w", err)
		}
		if len(art.Bytecode) == 0 {
			return nil, errors.New("artifact has no bytecode field")
		}
		if err := json.Unmarshal(art.Bytecode, &hexStr); err != nil {
			var forge foundryBytecode
			if err := json.Unmarshal(art.Bytecode, &forge); err != nil {
				return nil, fmt.Errorf("unrecognized bytecode field: %w", err)
			}
			hexStr = forge.Object
		}
	} else {
		hexStr = string(data)
	}

	code, err := ParseBytecode(hexStr)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, ErrEmptyBytecode
	}
	return code, nil
}
