package txmgr

import (
	"context"
	"errors"
	"math/big"
)

// GasPriceEstimatorFn returns the tip cap and base fee to price a transaction with.
type GasPriceEstimatorFn func(ctx context.Context, backend ETHBackend) (tipCap *big.Int, baseFee *big.Int, err error)

func DefaultGasPriceEstimatorFn(ctx context.Context, backend ETHBackend) (*big.Int, *big.Int, error) {
	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, err
	}

	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	if head.BaseFee == nil {
		return nil, nil, errors.New("txmgr does not support pre-london blocks that do not have a base fee")
	}

	return tip, head.BaseFee, nil
}

// calcGasFeeCap leaves room for the base fee to double before the tx stops being includable.
func calcGasFeeCap(baseFee, gasTipCap *big.Int) *big.Int {
	return new(big.Int).Add(
		gasTipCap,
		new(big.Int).Mul(baseFee, big.NewInt(2)),
	)
}
