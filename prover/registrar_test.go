package prover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyli-org/attest/blob"
	"github.com/hyli-org/attest/hyli"
)

// fakeLedger simulates the node's contract surface; contracts registered
// through it become visible to subsequent lookups
type fakeLedger struct {
	contracts     map[string]*hyli.Contract
	lookupErr     error
	registerErr   error
	lookupCalls   int
	registerCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{contracts: map[string]*hyli.Contract{}}
}

func (l *fakeLedger) GetContract(ctx context.Context, name string) (*hyli.Contract, error) {
	l.lookupCalls++
	if l.lookupErr != nil {
		return nil, l.lookupErr
	}
	contract, ok := l.contracts[name]
	if !ok {
		return nil, &hyli.NotFoundError{Resource: name}
	}
	return contract, nil
}

func (l *fakeLedger) RegisterContract(ctx context.Context, contract *hyli.Contract) error {
	l.registerCalls++
	if l.registerErr != nil {
		return l.registerErr
	}
	l.contracts[contract.Name] = contract
	return nil
}

func TestEnsureContractRegistersWhenAbsent(t *testing.T) {
	ledger := newFakeLedger()
	backend := &fakeBackend{vk: []byte{0xca, 0xfe}}
	registrar := InitRegistrar(ledger, backend)

	require.NoError(t, registrar.EnsureContract(context.Background(), blob.SecretContract))
	require.Equal(t, 1, ledger.registerCalls)

	registered := ledger.contracts[blob.SecretContract]
	require.NotNil(t, registered)
	assert.Equal(t, hyli.VerifierNoir, registered.Verifier)
	assert.Equal(t, []byte{0xca, 0xfe}, registered.ProgramID)
	assert.Equal(t, make([]byte, hyli.StateWidth), registered.StateCommitment)
}

func TestEnsureContractIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	backend := &fakeBackend{vk: []byte{0xca, 0xfe}}
	registrar := InitRegistrar(ledger, backend)

	require.NoError(t, registrar.EnsureContract(context.Background(), blob.SecretContract))
	require.NoError(t, registrar.EnsureContract(context.Background(), blob.SecretContract))

	// the second call finds the contract and never re-registers
	assert.Equal(t, 1, ledger.registerCalls)
	assert.Equal(t, 2, ledger.lookupCalls)
	assert.Equal(t, 1, backend.vkCalls)
}

func TestEnsureContractSkipsWhenPresent(t *testing.T) {
	ledger := newFakeLedger()
	ledger.contracts[blob.SecretContract] = &hyli.Contract{Name: blob.SecretContract}
	backend := &fakeBackend{vk: []byte{0xca, 0xfe}}
	registrar := InitRegistrar(ledger, backend)

	require.NoError(t, registrar.EnsureContract(context.Background(), blob.SecretContract))
	assert.Zero(t, ledger.registerCalls)
	assert.Zero(t, backend.vkCalls)
}

func TestEnsureContractPropagatesLookupFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.lookupErr = errors.New("node unreachable")
	registrar := InitRegistrar(ledger, &fakeBackend{vk: []byte{0x01}})

	err := registrar.EnsureContract(context.Background(), blob.SecretContract)
	require.Error(t, err)
	assert.Equal(t, ledger.lookupErr, err, "only a not-found lookup triggers registration")
	assert.Zero(t, ledger.registerCalls)
}

func TestEnsureContractPropagatesVerifyingKeyFailure(t *testing.T) {
	ledger := newFakeLedger()
	registrar := InitRegistrar(ledger, &fakeBackend{vkErr: errors.New("bb exited 1")})

	err := registrar.EnsureContract(context.Background(), blob.SecretContract)
	require.Error(t, err)
	assert.Zero(t, ledger.registerCalls)
}

func TestEnsureContractPropagatesRegisterFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.registerErr = errors.New("registration rejected")
	registrar := InitRegistrar(ledger, &fakeBackend{vk: []byte{0x01}})

	err := registrar.EnsureContract(context.Background(), blob.SecretContract)
	require.Error(t, err)
}
