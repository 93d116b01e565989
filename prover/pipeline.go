/*
 * Copyright 2024-2026 Hyli Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package prover

import (
	"context"
	"fmt"

	"github.com/hyli-org/attest/codec"
	"github.com/hyli-org/attest/hyli"
	zkp "github.com/hyli-org/attest/zkp/providers"
)

// Pipeline drives circuit execution and proof generation through an injected
// proving backend and reconstructs the backend output into the canonical
// proof-transaction byte layout. It holds no mutable state; concurrent
// callers each get an independent, side-effect-free path.
type Pipeline struct {
	backend zkp.ProvingBackend
}

// InitPipeline initializes a pipeline over the given proving backend
func InitPipeline(backend zkp.ProvingBackend) *Pipeline {
	return &Pipeline{backend: backend}
}

// Execute merges the assembled public-input record with the circuit-private
// inputs and runs circuit execution, returning the serialized witness
func (p *Pipeline) Execute(ctx context.Context, circuit string, output *hyli.Output, private map[string]interface{}) ([]byte, error) {
	inputs := output.CircuitInputs()
	for name, value := range private {
		inputs[name] = value
	}

	return p.backend.Execute(ctx, circuit, inputs)
}

// ProveWitness generates a proof for an already-executed witness and wraps
// it into a proof transaction
func (p *Pipeline) ProveWitness(ctx context.Context, circuit string, witness []byte) (*hyli.ProofTransaction, error) {
	result, err := p.backend.Prove(ctx, circuit, witness)
	if err != nil {
		return nil, err
	}

	proof, err := ReconstructProof(result.PublicInputs, result.Proof)
	if err != nil {
		return nil, err
	}

	return &hyli.ProofTransaction{
		ContractName: circuit,
		ProgramID:    result.VerifyingKey,
		Verifier:     hyli.VerifierNoir,
		Proof:        proof,
	}, nil
}

// BuildProofTransaction runs the full pipeline: circuit execution over the
// assembled record plus private inputs, proof generation, and canonical
// reconstruction
func (p *Pipeline) BuildProofTransaction(ctx context.Context, circuit string, output *hyli.Output, private map[string]interface{}) (*hyli.ProofTransaction, error) {
	witness, err := p.Execute(ctx, circuit, output, private)
	if err != nil {
		return nil, err
	}

	return p.ProveWitness(ctx, circuit, witness)
}

// ReconstructProof converts each public input field element into its fixed
// 32-byte big-endian representation and concatenates them ahead of the raw
// backend proof bytes. The ordering, public inputs first, is a protocol
// contract with the verifier.
func ReconstructProof(publicInputs []string, proof []byte) ([]byte, error) {
	reconstructed := make([]byte, 0, len(publicInputs)*codec.FieldElementSize+len(proof))

	for i, element := range publicInputs {
		buf, err := codec.FieldElementBytes(element)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct public input %d; %s", i, err.Error())
		}
		reconstructed = append(reconstructed, buf...)
	}

	return append(reconstructed, proof...), nil
}

// SplitProof is the inverse of ReconstructProof given the public input
// count; it recovers the 32-byte public input encodings and the raw proof
func SplitProof(reconstructed []byte, publicInputCount int) ([][]byte, []byte, error) {
	boundary := publicInputCount * codec.FieldElementSize
	if len(reconstructed) < boundary {
		return nil, nil, fmt.Errorf("%d-byte proof too short for %d public inputs", len(reconstructed), publicInputCount)
	}

	publicInputs := make([][]byte, publicInputCount)
	for i := 0; i < publicInputCount; i++ {
		publicInputs[i] = reconstructed[i*codec.FieldElementSize : (i+1)*codec.FieldElementSize]
	}

	return publicInputs, reconstructed[boundary:], nil
}
