package gnark

import (
	"github.com/consensys/gnark/frontend"
)

// CircuitIdentifierCubic names the cubic smoke-test circuit
const CircuitIdentifierCubic = "cubic"

// CubicCircuit proves knowledge of x satisfying x**3 + x + 5 == y
type CubicCircuit struct {
	X frontend.Variable `gnark:"x"`
	Y frontend.Variable `gnark:"y,public"`
}

// Define declares the circuit constraints
func (circuit *CubicCircuit) Define(api frontend.API) error {
	x3 := api.Mul(circuit.X, circuit.X, circuit.X)
	api.AssertIsEqual(circuit.Y, api.Add(x3, circuit.X, 5))
	return nil
}
