package gnark

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// CircuitIdentifierMimc names the mimc preimage circuit
const CircuitIdentifierMimc = "mimc"

// MimcCircuit proves knowledge of the preimage of a mimc hash
type MimcCircuit struct {
	Preimage frontend.Variable
	Hash     frontend.Variable `gnark:",public"`
}

// Define declares the circuit constraints
func (circuit *MimcCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	hasher.Write(circuit.Preimage)
	api.AssertIsEqual(circuit.Hash, hasher.Sum())
	return nil
}
