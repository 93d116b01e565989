package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hyli-org/attest/common"
)

// NoirBackend drives the Noir toolchain: nargo for witness generation and
// barretenberg (bb) for proving. Each circuit lives in its own Noir package
// under circuitsPath, with the compiled artifact at target/<name>.json.
type NoirBackend struct {
	circuitsPath string
	nargoBin     string
	bbBin        string
}

// InitNoirBackend initializes and configures a new NoirBackend instance
func InitNoirBackend(circuitsPath, nargoBin, bbBin string) *NoirBackend {
	return &NoirBackend{
		circuitsPath: circuitsPath,
		nargoBin:     nargoBin,
		bbBin:        bbBin,
	}
}

// Execute writes the inputs as a uniquely named prover file and runs nargo
// execute, returning the serialized witness; a failed execution surfaces
// which input or assertion the circuit rejected
func (b *NoirBackend) Execute(ctx context.Context, circuit string, inputs map[string]interface{}) ([]byte, error) {
	programDir := filepath.Join(b.circuitsPath, circuit)

	proverToml, err := toml.Marshal(inputs)
	if err != nil {
		return nil, &WitnessError{Circuit: circuit, Err: err}
	}

	// the prover file carries private witness inputs and is unique per
	// invocation; concurrent executions of the same circuit never read each
	// other's inputs and the secrets never outlive the execution
	proverName := fmt.Sprintf("prover-%s", common.RandomString(8))
	proverPath := filepath.Join(programDir, proverName+".toml")
	if err := os.WriteFile(proverPath, proverToml, 0o600); err != nil {
		return nil, &WitnessError{Circuit: circuit, Err: err}
	}
	defer os.Remove(proverPath)

	witnessName := fmt.Sprintf("witness-%s", common.RandomString(8))
	cmd := exec.CommandContext(ctx, b.nargoBin, "execute",
		"--program-dir", programDir,
		"--prover-name", proverName,
		witnessName,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, &WitnessError{
			Circuit: circuit,
			Err:     fmt.Errorf("nargo execute failed; %s: %s", err.Error(), strings.TrimSpace(string(output))),
		}
	}

	witnessPath := filepath.Join(programDir, "target", witnessName+".gz")
	defer os.Remove(witnessPath)

	witness, err := os.ReadFile(witnessPath)
	if err != nil {
		return nil, &WitnessError{Circuit: circuit, Err: err}
	}

	return witness, nil
}

// Prove runs bb against the compiled circuit artifact and the given witness,
// returning the raw proof bytes, the public input field elements and the
// verification key
func (b *NoirBackend) Prove(ctx context.Context, circuit string, witness []byte) (*Proof, error) {
	outDir, err := os.MkdirTemp("", "attest-bb-")
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}
	defer os.RemoveAll(outDir)

	witnessPath := filepath.Join(outDir, "witness.gz")
	if err := os.WriteFile(witnessPath, witness, 0o644); err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	cmd := exec.CommandContext(ctx, b.bbBin, "prove",
		"-b", b.artifactPath(circuit),
		"-w", witnessPath,
		"-o", outDir,
		"--output_format", "bytes_and_fields",
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, &ProofGenerationError{
			Circuit: circuit,
			Err:     fmt.Errorf("bb prove failed; %s: %s", err.Error(), strings.TrimSpace(string(output))),
		}
	}

	proof, err := os.ReadFile(filepath.Join(outDir, "proof"))
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	fieldsJSON, err := os.ReadFile(filepath.Join(outDir, "public_inputs_fields.json"))
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	var publicInputs []string
	if err := json.Unmarshal(fieldsJSON, &publicInputs); err != nil {
		return nil, &ProofGenerationError{
			Circuit: circuit,
			Err:     fmt.Errorf("failed to parse public input fields; %s", err.Error()),
		}
	}

	vk, err := b.VerifyingKey(ctx, circuit)
	if err != nil {
		return nil, &ProofGenerationError{Circuit: circuit, Err: err}
	}

	return &Proof{
		Proof:        proof,
		PublicInputs: publicInputs,
		VerifyingKey: vk,
	}, nil
}

// VerifyingKey derives the circuit's verification key via bb write_vk
func (b *NoirBackend) VerifyingKey(ctx context.Context, circuit string) ([]byte, error) {
	outDir, err := os.MkdirTemp("", "attest-vk-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, b.bbBin, "write_vk",
		"-b", b.artifactPath(circuit),
		"-o", outDir,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("bb write_vk failed for %s circuit; %s: %s", circuit, err.Error(), strings.TrimSpace(string(output)))
	}

	return os.ReadFile(filepath.Join(outDir, "vk"))
}

func (b *NoirBackend) artifactPath(circuit string) string {
	return filepath.Join(b.circuitsPath, circuit, "target", circuit+".json")
}
