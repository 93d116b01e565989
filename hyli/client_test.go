package hyli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContractNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contract/check_secret", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := InitClient(srv.URL)
	_, err := client.GetContract(context.Background(), "check_secret")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGetContract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&Contract{
			Name:     "check_secret",
			Verifier: VerifierNoir,
		})
	}))
	defer srv.Close()

	client := InitClient(srv.URL)
	contract, err := client.GetContract(context.Background(), "check_secret")
	require.NoError(t, err)
	assert.Equal(t, "check_secret", contract.Name)
	assert.Equal(t, VerifierNoir, contract.Verifier)
}

func TestGetContractServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := InitClient(srv.URL)
	_, err := client.GetContract(context.Background(), "check_secret")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestRegisterContract(t *testing.T) {
	var registered *Contract
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contract/register", r.URL.Path)
		registered = &Contract{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(registered))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := InitClient(srv.URL)
	err := client.RegisterContract(context.Background(), &Contract{
		Name:            "check_secret",
		Verifier:        VerifierNoir,
		ProgramID:       []byte{0x01, 0x02},
		StateCommitment: make([]byte, StateWidth),
	})
	require.NoError(t, err)
	require.NotNil(t, registered)
	assert.Equal(t, "check_secret", registered.Name)
	assert.Equal(t, []byte{0x01, 0x02}, registered.ProgramID)
}

func TestSendBlobTx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tx/send/blob", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"tx_hash": "deadbeef"})
	}))
	defer srv.Close()

	client := InitClient(srv.URL)
	hash, err := client.SendBlobTx(context.Background(), "alice", []*Blob{{
		ContractName: "check_secret",
		Data:         make([]byte, 32),
	}})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)
}

func TestSendProofTxBareHashResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tx/send/proof", r.URL.Path)
		json.NewEncoder(w).Encode("cafebabe")
	}))
	defer srv.Close()

	client := InitClient(srv.URL)
	hash, err := client.SendProofTx(context.Background(), &ProofTransaction{
		ContractName: "check_secret",
		Verifier:     VerifierNoir,
		Proof:        []byte{0x00},
	})
	require.NoError(t, err)
	assert.Equal(t, "cafebabe", hash)
}
