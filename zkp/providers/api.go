package providers

import (
	"context"
	"fmt"

	"github.com/hyli-org/attest/common"
)

// ProvingBackendNoir names the Noir/barretenberg CLI proving backend
const ProvingBackendNoir = "noir"

// ProvingBackendGnark names the in-process gnark groth16 proving backend
const ProvingBackendGnark = "gnark"

// Proof is the raw output of a proving backend: the opaque proof bytes, the
// public inputs as backend-native field element strings and the verification
// key committing to the circuit
type Proof struct {
	Proof        []byte
	PublicInputs []string
	VerifyingKey []byte
}

// ProvingBackend provides a common interface to execute circuits and
// generate proofs; implementations suspend only at these boundaries and hold
// no state across invocations
type ProvingBackend interface {
	Execute(ctx context.Context, circuit string, inputs map[string]interface{}) ([]byte, error)
	Prove(ctx context.Context, circuit string, witness []byte) (*Proof, error)
	VerifyingKey(ctx context.Context, circuit string) ([]byte, error)
}

// WitnessError indicates the circuit rejected the input record during
// execution, typically a downstream symptom of an assembly bug; it is never
// retried
type WitnessError struct {
	Circuit string
	Err     error
}

func (e *WitnessError) Error() string {
	return fmt.Sprintf("failed to execute %s circuit; %s", e.Circuit, e.Err.Error())
}

func (e *WitnessError) Unwrap() error {
	return e.Err
}

// ProofGenerationError indicates the backend failed to produce a proof;
// fatal, since re-proving an identical witness is deterministic and will not
// succeed
type ProofGenerationError struct {
	Circuit string
	Err     error
}

func (e *ProofGenerationError) Error() string {
	return fmt.Sprintf("failed to generate proof for %s circuit; %s", e.Circuit, e.Err.Error())
}

func (e *ProofGenerationError) Unwrap() error {
	return e.Err
}

// BackendFactory resolves a proving backend by name
func BackendFactory(name string) ProvingBackend {
	switch name {
	case ProvingBackendNoir:
		return InitNoirBackend(common.NoirCircuitsPath, common.NargoBin, common.BarretenbergBin)
	case ProvingBackendGnark:
		return InitGnarkBackend(nil)
	default:
		common.Log.Warningf("failed to initialize proving backend; unknown backend: %s", name)
	}

	return nil
}
