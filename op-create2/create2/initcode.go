package create2

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// ParseBytecode decodes hex contract bytecode, with or without the 0x prefix.
func ParseBytecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// BuildInitCode returns bytecode followed by the ABI encoding of the
// constructor arguments. Without constructor types the bytecode is returned
// unchanged. Textual arguments are coerced to the declared types, so values
// read from flags or config files can be passed as strings.
func BuildInitCode(constructorTypes []string, constructorArgs []any, bytecode []byte) ([]byte, error) {
	if len(constructorTypes) != len(constructorArgs) {
		return nil, &EncodingError{
			Index: -1,
			Err:   fmt.Errorf("got %d constructor types but %d arguments", len(constructorTypes), len(constructorArgs)),
		}
	}
	out := bytes.Clone(bytecode)
	if out == nil {
		out = []byte{}
	}
	if len(constructorTypes) == 0 {
		return out, nil
	}

	args := make(abi.Arguments, 0, len(constructorTypes))
	values := make([]any, 0, len(constructorArgs))
	for i, typeStr := range constructorTypes {
		typ, err := parseType(typeStr)
		if err != nil {
			return nil, &EncodingError{Index: i, Type: typeStr, Err: err}
		}
		v, err := coerceArg(typ, constructorArgs[i])
		if err != nil {
			return nil, &EncodingError{Index: i, Type: typeStr, Err: err}
		}
		args = append(args, abi.Argument{Type: typ})
		values = append(values, v)
	}

	encoded, err := args.Pack(values...)
	if err != nil {
		return nil, &EncodingError{Index: -1, Err: err}
	}
	return append(out, encoded...), nil
}

// parseType parses an ABI type tag. Tuples are written as "(T1,T2)" or
// "tuple(T1,T2)", optionally followed by array suffixes such as "[]".
func parseType(s string) (abi.Type, error) {
	m, err := typeMarshaling(strings.TrimSpace(s))
	if err != nil {
		return abi.Type{}, err
	}
	return abi.NewType(m.Type, "", m.Components)
}

func typeMarshaling(s string) (abi.ArgumentMarshaling, error) {
	rest := strings.TrimPrefix(s, "tuple")
	if !strings.HasPrefix(rest, "(") {
		if rest != s {
			return abi.ArgumentMarshaling{}, fmt.Errorf("tuple type %q needs components", s)
		}
		return abi.ArgumentMarshaling{Type: s}, nil
	}

	depth, end := 0, -1
	for i, c := range rest {
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				end = i
				break
			}
		}
	}
	if end < 0 {
		return abi.ArgumentMarshaling{}, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	parts, err := splitComponents(rest[1:end])
	if err != nil {
		return abi.ArgumentMarshaling{}, fmt.Errorf("invalid tuple %q: %w", s, err)
	}
	components := make([]abi.ArgumentMarshaling, len(parts))
	for i, part := range parts {
		c, err := typeMarshaling(part)
		if err != nil {
			return abi.ArgumentMarshaling{}, err
		}
		c.Name = fmt.Sprintf("field%d", i)
		components[i] = c
	}
	return abi.ArgumentMarshaling{Type: "tuple" + rest[end+1:], Components: components}, nil
}

// splitComponents splits a tuple body on its top-level commas.
func splitComponents(body string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)
	for i, c := range body {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced parentheses")
	}
	parts = append(parts, strings.TrimSpace(body[start:]))
	for _, p := range parts {
		if p == "" {
			return nil, errors.New("empty component")
		}
	}
	return parts, nil
}

// coerceArg converts v into the Go value the ABI encoder expects for typ.
func coerceArg(typ abi.Type, v any) (any, error) {
	if v == nil {
		return nil, errors.New("missing value")
	}
	switch typ.T {
	case abi.IntTy, abi.UintTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		// Integers are range checked even when already of the encoder's type.
	default:
		if reflect.TypeOf(v) == typ.GetType() {
			return v, nil
		}
	}

	switch typ.T {
	case abi.AddressTy:
		return toAddress(v)
	case abi.BoolTy:
		return toBool(v)
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("cannot use %T as string", v)
		}
		return s, nil
	case abi.IntTy, abi.UintTy:
		return toInteger(typ, v)
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy:
		return toFixedBytes(typ, v)
	case abi.SliceTy, abi.ArrayTy:
		return toList(typ, v)
	case abi.TupleTy:
		return toTuple(typ, v)
	default:
		return nil, fmt.Errorf("unsupported constructor type %s", typ.String())
	}
}

func toAddress(v any) (common.Address, error) {
	switch x := v.(type) {
	case string:
		if !common.IsHexAddress(x) {
			return common.Address{}, fmt.Errorf("invalid address %q", x)
		}
		return common.HexToAddress(x), nil
	case []byte:
		if len(x) != common.AddressLength {
			return common.Address{}, fmt.Errorf("address must be %d bytes, got %d", common.AddressLength, len(x))
		}
		return common.BytesToAddress(x), nil
	case *common.Address:
		if x == nil {
			return common.Address{}, errors.New("nil address")
		}
		return *x, nil
	}
	return common.Address{}, fmt.Errorf("cannot use %T as address", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	}
	return false, fmt.Errorf("cannot use %T as bool", v)
}

func toBigInt(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, errors.New("nil integer")
		}
		return new(big.Int).Set(x), nil
	case big.Int:
		return new(big.Int).Set(&x), nil
	case *uint256.Int:
		if x == nil {
			return nil, errors.New("nil integer")
		}
		return x.ToBig(), nil
	case json.Number:
		return parseBigInt(x.String())
	case string:
		return parseBigInt(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	out, ok := new(big.Int).SetString(s, base)
	if !ok || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		out.Neg(out)
	}
	return out, nil
}

func toInteger(typ abi.Type, v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}
	bits := uint(typ.Size)
	if typ.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > int(bits) {
			return nil, fmt.Errorf("value %s out of range for %s", n, typ.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), bits-1)
		minVal := new(big.Int).Neg(limit)
		if n.Cmp(minVal) < 0 || n.Cmp(limit) >= 0 {
			return nil, fmt.Errorf("value %s out of range for %s", n, typ.String())
		}
	}

	goType := typ.GetType()
	if goType == bigIntType {
		return n, nil
	}
	out := reflect.New(goType).Elem()
	if typ.T == abi.UintTy {
		out.SetUint(n.Uint64())
	} else {
		out.SetInt(n.Int64())
	}
	return out.Interface(), nil
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		b, err := ParseBytecode(x)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", x, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("cannot use %T as bytes", v)
}

func toFixedBytes(typ abi.Type, v any) (any, error) {
	var raw []byte
	switch x := v.(type) {
	case common.Hash:
		raw = x.Bytes()
	default:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) != typ.Size {
		return nil, fmt.Errorf("%s requires exactly %d bytes, got %d", typ.String(), typ.Size, len(raw))
	}
	out := reflect.New(typ.GetType()).Elem()
	reflect.Copy(out, reflect.ValueOf(raw))
	return out.Interface(), nil
}

func toList(typ abi.Type, v any) (any, error) {
	var elems []any
	switch x := v.(type) {
	case string:
		var err error
		if elems, err = decodeJSONList(x); err != nil {
			return nil, fmt.Errorf("%s argument must be a JSON array: %w", typ.String(), err)
		}
	case []any:
		elems = x
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("cannot use %T as %s", v, typ.String())
		}
		elems = make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
	}

	goType := typ.GetType()
	var out reflect.Value
	if typ.T == abi.ArrayTy {
		if len(elems) != typ.Size {
			return nil, fmt.Errorf("%s requires %d elements, got %d", typ.String(), typ.Size, len(elems))
		}
		out = reflect.New(goType).Elem()
	} else {
		out = reflect.MakeSlice(goType, len(elems), len(elems))
	}
	for i, e := range elems {
		c, err := coerceArg(*typ.Elem, e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(c))
	}
	return out.Interface(), nil
}

// decodeJSONList decodes a JSON array, keeping numbers exact.
func decodeJSONList(s string) ([]any, error) {
	var elems []any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&elems); err != nil {
		return nil, err
	}
	return elems, nil
}

// toTuple fills the encoder's struct for typ from a positional list of
// components, given as a JSON array or a config array.
func toTuple(typ abi.Type, v any) (any, error) {
	var elems []any
	switch x := v.(type) {
	case string:
		var err error
		if elems, err = decodeJSONList(x); err != nil {
			return nil, fmt.Errorf("%s argument must be a JSON array: %w", typ.String(), err)
		}
	case []any:
		elems = x
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, typ.String())
	}
	if len(elems) != len(typ.TupleElems) {
		return nil, fmt.Errorf("%s requires %d components, got %d", typ.String(), len(typ.TupleElems), len(elems))
	}

	out := reflect.New(typ.GetType()).Elem()
	for i, e := range elems {
		c, err := coerceArg(*typ.TupleElems[i], e)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out.Field(i).Set(reflect.ValueOf(c))
	}
	return out.Interface(), nil
}
