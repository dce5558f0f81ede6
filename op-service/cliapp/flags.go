package cliapp

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// CloneableGeneric is a cli.Generic value that can hand out an independent copy.
type CloneableGeneric interface {
	cli.Generic
	Clone() any
}

// ProtectFlags copies the flags, so parsing into an app does not mutate the
// shared flag definitions. Generic flags must have a CloneableGeneric value.
func ProtectFlags(flags []cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0, len(flags))
	for _, f := range flags {
		fCopy, err := cloneFlag(f)
		if err != nil {
			panic(fmt.Errorf("failed to clone flag %q: %w", f.Names()[0], err))
		}
		out = append(out, fCopy)
	}
	return out
}

func cloneFlag(f cli.Flag) (cli.Flag, error) {
	switch typedFlag := f.(type) {
	case *cli.GenericFlag:
		cpy := *typedFlag
		if typedFlag.Value != nil {
			genValue, ok := typedFlag.Value.(CloneableGeneric)
			if !ok {
				return nil, fmt.Errorf("generic value of type %T is not cloneable", typedFlag.Value)
			}
			cpy.Value = genValue.Clone().(cli.Generic)
		}
		return &cpy, nil
	case *cli.StringFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.BoolFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.Uint64Flag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.DurationFlag:
		cpy := *typedFlag
		return &cpy, nil
	case *cli.StringSliceFlag:
		cpy := *typedFlag
		if typedFlag.Value != nil {
			cpy.Value = cli.NewStringSlice(typedFlag.Value.Value()...)
		}
		return &cpy, nil
	case *cli.PathFlag:
		cpy := *typedFlag
		return &cpy, nil
	default:
		return nil, fmt.Errorf("unsupported flag type %T", f)
	}
}
