package create2

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/op-create2/op-service/testlog"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr/mocks"
)

type fakeMetrics struct {
	outcomes []string
}

func (f *fakeMetrics) RecordDeployment(common.Address) func(error) {
	return func(err error) {
		f.outcomes = append(f.outcomes, Outcome(err))
	}
}

type fakeCodeReader struct {
	code map[common.Address][]byte
	err  error
}

func (f *fakeCodeReader) CodeAt(_ context.Context, addr common.Address, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.code[addr], nil
}

func deployedLog(t *testing.T, factory, addr common.Address, salt *uint256.Int) *types.Log {
	event := FactoryABI.Events["Deployed"]
	data, err := event.Inputs.Pack(addr, salt.ToBig())
	require.NoError(t, err)
	return &types.Log{
		Address: factory,
		Topics:  []common.Hash{event.ID},
		Data:    data,
	}
}

func successReceipt(logs ...*types.Log) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      common.Hash{0x77},
		BlockNumber: big.NewInt(12),
		GasUsed:     100_000,
		Logs:        logs,
	}
}

func recorderRequest(salt uint64) DeployRequest {
	return DeployRequest{
		Salt:             uint256.NewInt(salt),
		Bytecode:         recorderCode,
		ConstructorTypes: []string{"address"},
		ConstructorArgs:  []any{recorderArg.Hex()},
	}
}

var predictedSalt1 = common.HexToAddress("0x88dc91af2375b9c977ecc8d41d66858d7688182e")

func setupDeployer(t *testing.T, opts ...Option) (*Deployer, *mocks.TxManager, *fakeMetrics) {
	txMgr := mocks.NewTxManager(t)
	txMgr.On("From").Return(common.Address{0xf3}).Maybe()
	m := &fakeMetrics{}
	return NewDeployer(testlog.Logger(t, log.LevelDebug), m, txMgr, opts...), txMgr, m
}

func TestDeploySuccess(t *testing.T) {
	d, txMgr, m := setupDeployer(t)
	req := recorderRequest(1)

	initCode, err := req.InitCode()
	require.NoError(t, err)
	calldata, err := PackDeploy(initCode, req.Salt)
	require.NoError(t, err)

	rec := successReceipt(
		&types.Log{Address: common.Address{0x99}, Topics: []common.Hash{{0x01}}},
		deployedLog(t, FactoryAddress, predictedSalt1, req.Salt),
	)
	txMgr.On("Send", mock.Anything, mock.MatchedBy(func(c txmgr.TxCandidate) bool {
		return c.To != nil && *c.To == FactoryAddress && string(c.TxData) == string(calldata) && c.Value == nil
	})).Return(rec, nil).Once()

	res, err := d.Deploy(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, predictedSalt1, res.Address)
	require.Equal(t, rec.TxHash, res.TxHash)
	require.Same(t, rec, res.Receipt)
	require.Equal(t, []string{"success"}, m.outcomes)

	predicted, err := d.PredictAddress(req)
	require.NoError(t, err)
	require.Equal(t, res.Address, predicted)
}

func TestDeployCalldataSelector(t *testing.T) {
	calldata, err := PackDeploy(recorderCode, uint256.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, []byte{0x9c, 0x4a, 0xe2, 0xd0}, calldata[:4])
	require.Equal(t, common.LeftPadBytes([]byte{1}, 32), calldata[4+32:4+64])
}

func TestDeployAddressMismatch(t *testing.T) {
	d, txMgr, m := setupDeployer(t)
	req := recorderRequest(1)
	actual := common.Address{0xbb}
	txMgr.On("Send", mock.Anything, mock.Anything).
		Return(successReceipt(deployedLog(t, FactoryAddress, actual, req.Salt)), nil).Once()

	_, err := d.Deploy(context.Background(), req)
	var mismatch *AddressMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, predictedSalt1, mismatch.Expected)
	require.Equal(t, actual, mismatch.Actual)
	require.Equal(t, FactoryAddress, mismatch.Factory)
	require.Equal(t, common.HexToHash("0xe6504b60f09aeacb3b8a37eaf77768007d8a6b28e4729bca2bf577064360a1f1"), mismatch.InitCodeHash)
	require.Contains(t, err.Error(), Canonical(predictedSalt1))
	require.Equal(t, []string{"mismatch"}, m.outcomes)
}

func TestDeployNoEvent(t *testing.T) {
	tests := []struct {
		name string
		logs []*types.Log
	}{
		{name: "no logs"},
		{name: "event from other contract", logs: []*types.Log{deployedLog(t, common.Address{0x01}, predictedSalt1, uint256.NewInt(1))}},
		{name: "malformed event data", logs: []*types.Log{{
			Address: FactoryAddress,
			Topics:  []common.Hash{FactoryABI.Events["Deployed"].ID},
			Data:    []byte{0x01},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, txMgr, m := setupDeployer(t)
			txMgr.On("Send", mock.Anything, mock.Anything).Return(successReceipt(tt.logs...), nil).Once()

			_, err := d.Deploy(context.Background(), recorderRequest(1))
			var noEvent *NoEventFoundError
			require.ErrorAs(t, err, &noEvent)
			require.Equal(t, len(tt.logs), noEvent.Logs)
			require.Equal(t, []string{"no_event"}, m.outcomes)
		})
	}
}

func TestDeployReverted(t *testing.T) {
	d, txMgr, m := setupDeployer(t)
	rec := successReceipt()
	rec.Status = types.ReceiptStatusFailed
	txMgr.On("Send", mock.Anything, mock.Anything).Return(rec, nil).Once()

	_, err := d.Deploy(context.Background(), recorderRequest(1))
	var reverted *RevertedError
	require.ErrorAs(t, err, &reverted)
	require.Equal(t, rec.TxHash, reverted.TxHash)
	require.Equal(t, []string{"reverted"}, m.outcomes)
}

func TestDeploySendError(t *testing.T) {
	d, txMgr, m := setupDeployer(t)
	sendErr := errors.New("insufficient funds")
	txMgr.On("Send", mock.Anything, mock.Anything).Return(nil, sendErr).Once()

	_, err := d.Deploy(context.Background(), recorderRequest(1))
	require.ErrorIs(t, err, sendErr)
	require.Equal(t, []string{"error"}, m.outcomes)
}

func TestDeployEncodingErrorSendsNothing(t *testing.T) {
	d, _, m := setupDeployer(t)
	req := recorderRequest(1)
	req.ConstructorArgs = nil

	_, err := d.Deploy(context.Background(), req)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, []string{"encoding"}, m.outcomes)
}

func TestDeployAlreadyDeployed(t *testing.T) {
	reader := &fakeCodeReader{code: map[common.Address][]byte{predictedSalt1: {0x60}}}
	d, _, m := setupDeployer(t, WithCodeReader(reader))

	_, err := d.Deploy(context.Background(), recorderRequest(1))
	require.ErrorIs(t, err, ErrAlreadyDeployed)
	require.Equal(t, []string{"already_deployed"}, m.outcomes)
}

func TestDeployNoCodeAfterDeployment(t *testing.T) {
	reader := &fakeCodeReader{code: map[common.Address][]byte{}}
	d, txMgr, m := setupDeployer(t, WithCodeReader(reader))
	txMgr.On("Send", mock.Anything, mock.Anything).
		Return(successReceipt(deployedLog(t, FactoryAddress, predictedSalt1, uint256.NewInt(1))), nil).Once()

	_, err := d.Deploy(context.Background(), recorderRequest(1))
	require.ErrorIs(t, err, ErrNoCode)
	require.Equal(t, []string{"no_code"}, m.outcomes)
}

func TestDeployCodeReaderError(t *testing.T) {
	readErr := errors.New("connection refused")
	d, _, _ := setupDeployer(t, WithCodeReader(&fakeCodeReader{err: readErr}))
	_, err := d.Deploy(context.Background(), recorderRequest(1))
	require.ErrorIs(t, err, readErr)
}

func TestDeployCustomFactory(t *testing.T) {
	factory := common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	d, txMgr, _ := setupDeployer(t, WithFactory(factory))
	require.Equal(t, factory, d.Factory())

	req := recorderRequest(1)
	expected, err := ComputeAddress(factory, req.Salt, req.Bytecode, req.ConstructorTypes, req.ConstructorArgs)
	require.NoError(t, err)
	require.NotEqual(t, predictedSalt1, expected)

	txMgr.On("Send", mock.Anything, mock.MatchedBy(func(c txmgr.TxCandidate) bool {
		return *c.To == factory
	})).Return(successReceipt(deployedLog(t, factory, expected, req.Salt)), nil).Once()

	res, err := d.Deploy(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, expected, res.Address)
}

func TestIsDeployed(t *testing.T) {
	reader := &fakeCodeReader{code: map[common.Address][]byte{{0x01}: {0x60, 0x00}}}
	deployed, err := IsDeployed(context.Background(), reader, common.Address{0x01})
	require.NoError(t, err)
	require.True(t, deployed)

	deployed, err = IsDeployed(context.Background(), reader, common.Address{0x02})
	require.NoError(t, err)
	require.False(t, deployed)
}

func TestParseDeployedEvent(t *testing.T) {
	ev, err := ParseDeployedEvent(FactoryAddress, []*types.Log{nil, deployedLog(t, FactoryAddress, predictedSalt1, uint256.NewInt(5))})
	require.NoError(t, err)
	require.Equal(t, predictedSalt1, ev.Addr)
	require.Equal(t, uint256.NewInt(5), ev.Salt)
	require.Equal(t, common.HexToHash("0xb03c53b28e78a88e31607a27e1fa48234dce28d5d9d9ec7b295aeb02e674a1e1"), FactoryABI.Events["Deployed"].ID)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "success", Outcome(nil))
	require.Equal(t, "encoding", Outcome(&EncodingError{Index: -1, Err: errors.New("x")}))
	require.Equal(t, "mismatch", Outcome(&AddressMismatchError{}))
	require.Equal(t, "no_event", Outcome(&NoEventFoundError{Err: errNoMatchingLog}))
	require.Equal(t, "reverted", Outcome(&RevertedError{}))
	require.Equal(t, "already_deployed", Outcome(ErrAlreadyDeployed))
	require.Equal(t, "no_code", Outcome(ErrNoCode))
	require.Equal(t, "error", Outcome(errors.New("boom")))
}
