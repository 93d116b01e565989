package providers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake nargo: resolves the named prover file under --program-dir and copies
// it verbatim into the witness artifact slot, so the returned witness
// reflects exactly which inputs the execution read
const fakeNargo = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    execute) shift ;;
    --program-dir) dir="$2"; shift 2 ;;
    --prover-name) prover="$2"; shift 2 ;;
    *) witness="$1"; shift ;;
  esac
done
mkdir -p "$dir/target"
cp "$dir/$prover.toml" "$dir/target/$witness.gz"
`

func testNoirBackend(t *testing.T) (*NoirBackend, string) {
	t.Helper()

	circuitsPath := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(circuitsPath, "check_secret"), 0o755))

	nargoBin := filepath.Join(t.TempDir(), "nargo")
	require.NoError(t, os.WriteFile(nargoBin, []byte(fakeNargo), 0o755))

	return InitNoirBackend(circuitsPath, nargoBin, "bb"), circuitsPath
}

func TestNoirExecute(t *testing.T) {
	backend, _ := testNoirBackend(t)

	witness, err := backend.Execute(context.Background(), "check_secret", map[string]interface{}{
		"identity": "alice",
	})
	require.NoError(t, err)
	assert.Contains(t, string(witness), "identity")
	assert.Contains(t, string(witness), "alice")
}

func TestNoirExecuteConcurrentCallsIsolated(t *testing.T) {
	backend, _ := testNoirBackend(t)

	identities := []string{"alice", "bob"}
	witnesses := make([][]byte, len(identities))

	var wg sync.WaitGroup
	for i, identity := range identities {
		wg.Add(1)
		go func(i int, identity string) {
			defer wg.Done()
			witness, err := backend.Execute(context.Background(), "check_secret", map[string]interface{}{
				"identity": identity,
			})
			assert.NoError(t, err)
			witnesses[i] = witness
		}(i, identity)
	}
	wg.Wait()

	// each witness derives from its own caller's inputs, never a concurrent
	// caller's
	assert.Contains(t, string(witnesses[0]), "alice")
	assert.NotContains(t, string(witnesses[0]), "bob")
	assert.Contains(t, string(witnesses[1]), "bob")
	assert.NotContains(t, string(witnesses[1]), "alice")
}

func TestNoirExecuteRemovesProverInputs(t *testing.T) {
	backend, circuitsPath := testNoirBackend(t)

	_, err := backend.Execute(context.Background(), "check_secret", map[string]interface{}{
		"identity": "alice",
		"password": "secret123",
	})
	require.NoError(t, err)

	// private witness inputs never outlive the execution
	entries, err := os.ReadDir(filepath.Join(circuitsPath, "check_secret"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".toml"), "prover inputs left on disk: %s", entry.Name())
	}
}

func TestNoirExecuteFailureIsWitnessError(t *testing.T) {
	backend := InitNoirBackend(t.TempDir(), "/nonexistent/nargo", "bb")

	_, err := backend.Execute(context.Background(), "check_secret", map[string]interface{}{})
	var witnessErr *WitnessError
	require.ErrorAs(t, err, &witnessErr)
	assert.Equal(t, "check_secret", witnessErr.Circuit)
}
