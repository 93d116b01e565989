package providers

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	gnarklib "github.com/hyli-org/attest/zkp/lib/circuits/gnark"
)

// GnarkBackend proves registered gnark circuits in-process with groth16. It
// exists so the pipeline and its surrounding machinery can run end-to-end in
// development and CI without the Noir toolchain installed; the Hyli contract
// circuits themselves are proven by the Noir backend.
type GnarkBackend struct {
	curveID        ecc.ID
	circuitLibrary map[string]func() frontend.Circuit

	mutex  sync.Mutex
	setups map[string]*gnarkSetup
}

type gnarkSetup struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// InitGnarkBackend initializes and configures a new GnarkBackend instance
func InitGnarkBackend(curveID *ecc.ID) *GnarkBackend {
	curve := ecc.BN254
	if curveID != nil {
		curve = *curveID
	}

	return &GnarkBackend{
		curveID: curve,
		circuitLibrary: map[string]func() frontend.Circuit{
			gnarklib.CircuitIdentifierCubic: func() frontend.Circuit { return &gnarklib.CubicCircuit{} },
			gnarklib.CircuitIdentifierMimc:  func() frontend.Circuit { return &gnarklib.MimcCircuit{} },
		},
		setups: map[string]*gnarkSetup{},
	}
}

// AddCircuit registers a gnark circuit factory under the given identifier
func (b *GnarkBackend) AddCircuit(identifier string, factory func() frontend.Circuit) {
	b.circuitLibrary[identifier] = factory
}

// Execute assigns the named inputs onto the circuit and serializes the full
// witness
func (b *GnarkBackend) Execute(ctx context.Context, circuit string, inputs map[string]interface{}) ([]byte, error) {
	factory, ok := b.circuitLibrary[circuit]
	if !ok {
		return nil, &WitnessError{Circuit: circuit, Err: fmt.Errorf("circuit not resolved")}
	}

	assignment := factory()
	if err := assignInputs(assignment, inputs); err != nil {
		return nil, &WitnessError{Circuit: circuit, Err: err}
	}

	w, err := frontend.NewWitness(assignment, b.curveID.ScalarField())
	if err != nil {
		return nil, &WitnessError{Circuit: circuit, Err: err}
	}

	serialized, err := w.MarshalBinary()
	if err != nil {
		return nil, &WitnessError{Circuit: circuit, Err: err}
	}

	return serialized, nil
}

// Prove compiles and sets up the circuit on first use, then generates a
// groth16 proof for the given witness
func (b *GnarkBackend) Prove(ctx context.Context, circuit string, serializedWitness []byte) (*Proof, error) {
	setup, err := b.requireSetup(circuit)
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	w, err := witness.New(b.curveID.ScalarField())
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}
	if err := w.UnmarshalBinary(serializedWitness); err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	proof, err := groth16.Prove(setup.ccs, setup.pk, w)
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	publicWitness, err := w.Public()
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	vector, ok := publicWitness.Vector().(fr.Vector)
	if !ok {
		return nil, &ProofGenerationError{Circuit: circuit, Err: fmt.Errorf("failed to cast public witness vector")}
	}

	publicInputs := make([]string, len(vector))
	for i := range vector {
		publicInputs[i] = vector[i].String()
	}

	proofBuf := new(bytes.Buffer)
	if _, err := proof.WriteTo(proofBuf); err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	vkBuf := new(bytes.Buffer)
	if _, err := setup.vk.WriteTo(vkBuf); err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	return &Proof{
		Proof:        proofBuf.Bytes(),
		PublicInputs: publicInputs,
		VerifyingKey: vkBuf.Bytes(),
	}, nil
}

// VerifyingKey returns the serialized groth16 verifying key for the circuit
func (b *GnarkBackend) VerifyingKey(ctx context.Context, circuit string) ([]byte, error) {
	setup, err := b.requireSetup(circuit)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if _, err := setup.vk.WriteTo(buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (b *GnarkBackend) requireSetup(circuit string) (*gnarkSetup, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if setup, ok := b.setups[circuit]; ok {
		return setup, nil
	}

	factory, ok := b.circuitLibrary[circuit]
	if !ok {
		return nil, fmt.Errorf("%s circuit not resolved", circuit)
	}

	ccs, err := frontend.Compile(b.curveID.ScalarField(), r1cs.NewBuilder, factory())
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s circuit; %s", circuit, err.Error())
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("failed to run setup for %s circuit; %s", circuit, err.Error())
	}

	setup := &gnarkSetup{ccs: ccs, pk: pk, vk: vk}
	b.setups[circuit] = setup
	return setup, nil
}

// assignInputs sets named values onto exported circuit fields by reflection;
// input keys must match the circuit struct's field names
func assignInputs(circuit frontend.Circuit, inputs map[string]interface{}) error {
	value := reflect.Indirect(reflect.ValueOf(circuit))

	for name, input := range inputs {
		field := value.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("field %s does not exist on circuit", name)
		}
		field.Set(reflect.ValueOf(frontend.Variable(input)))
	}

	return nil
}
