package cliutil

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var (
	addressType  = reflect.TypeOf(common.Address{})
	durationType = reflect.TypeOf(time.Duration(0))
	uint256Type  = reflect.TypeOf(&uint256.Int{})
	unmarshaler  = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// PopulateStruct fills the `cli` tagged fields of the struct cfg points to
// from the flags of ctx. Flags that are not set keep the field's value,
// except for plain strings, bools and numbers which take the flag default.
func PopulateStruct(cfg any, ctx *cli.Context) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a pointer to struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		flag := field.Tag.Get("cli")
		if flag == "" || !v.Field(i).CanSet() {
			continue
		}
		if err := setField(v.Field(i), ctx, flag); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

func setField(fv reflect.Value, ctx *cli.Context, flag string) error {
	ft := fv.Type()
	switch {
	case ft == durationType:
		fv.SetInt(int64(ctx.Duration(flag)))
		return nil
	case ft == addressType:
		if !ctx.IsSet(flag) {
			return nil
		}
		s := ctx.String(flag)
		if !common.IsHexAddress(s) {
			return fmt.Errorf("invalid address: %s", s)
		}
		fv.Set(reflect.ValueOf(common.HexToAddress(s)))
		return nil
	case ft == uint256Type:
		if !ctx.IsSet(flag) {
			return nil
		}
		n, err := Uint256Flag(ctx, flag)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(n))
		return nil
	}

	switch ft.Kind() {
	case reflect.String:
		fv.SetString(ctx.String(flag))
	case reflect.Bool:
		fv.SetBool(ctx.Bool(flag))
	case reflect.Int, reflect.Int64:
		fv.SetInt(ctx.Int64(flag))
	case reflect.Uint, reflect.Uint64:
		fv.SetUint(ctx.Uint64(flag))
	case reflect.Slice:
		if ft.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %v", ft)
		}
		if ctx.IsSet(flag) {
			fv.Set(reflect.ValueOf(ctx.StringSlice(flag)).Convert(ft))
		}
	case reflect.Pointer:
		if !ctx.IsSet(flag) {
			return nil
		}
		if !ft.Implements(unmarshaler) {
			return fmt.Errorf("unsupported pointer type: %v", ft)
		}
		elem := reflect.New(ft.Elem())
		if err := elem.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(ctx.String(flag))); err != nil {
			return err
		}
		fv.Set(elem)
	default:
		if !reflect.PointerTo(ft).Implements(unmarshaler) {
			return fmt.Errorf("unsupported type: %v", ft)
		}
		if !ctx.IsSet(flag) {
			return nil
		}
		return fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(ctx.String(flag)))
	}
	return nil
}
