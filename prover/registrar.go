package prover

import (
	"context"
	"fmt"
	"time"

	redisutil "github.com/kthomas/go-redisutil"

	"github.com/hyli-org/attest/common"
	"github.com/hyli-org/attest/hyli"
	zkp "github.com/hyli-org/attest/zkp/providers"
)

const contractCacheTTL = time.Hour * 24

// LedgerAPI is the narrow node surface the registrar depends on
type LedgerAPI interface {
	GetContract(ctx context.Context, name string) (*hyli.Contract, error)
	RegisterContract(ctx context.Context, contract *hyli.Contract) error
}

// Registrar idempotently registers circuit verification keys with the node
// under their fixed contract names. Concurrent registrations may race with
// themselves; the node's registration semantics make the duplicate attempt
// safe to retry.
type Registrar struct {
	client  LedgerAPI
	backend zkp.ProvingBackend
}

// InitRegistrar initializes a registrar over the given node client and
// proving backend
func InitRegistrar(client LedgerAPI, backend zkp.ProvingBackend) *Registrar {
	return &Registrar{
		client:  client,
		backend: backend,
	}
}

// EnsureContract registers the circuit's verification key with the node if,
// and only if, the contract lookup reports it absent; any other lookup
// failure propagates unchanged
func (r *Registrar) EnsureContract(ctx context.Context, circuit string) error {
	cacheKey := fmt.Sprintf("attest.contract.%s", circuit)
	if r.cached(cacheKey) {
		return nil
	}

	_, err := r.client.GetContract(ctx, circuit)
	if err == nil {
		r.cache(cacheKey)
		return nil
	}

	if !hyli.IsNotFound(err) {
		return err
	}

	vk, err := r.backend.VerifyingKey(ctx, circuit)
	if err != nil {
		return fmt.Errorf("failed to derive verification key for %s contract; %s", circuit, err.Error())
	}

	err = r.client.RegisterContract(ctx, &hyli.Contract{
		Name:            circuit,
		Verifier:        hyli.VerifierNoir,
		ProgramID:       vk,
		StateCommitment: make([]byte, hyli.StateWidth),
	})
	if err != nil {
		return err
	}

	common.Log.Debugf("registered %s contract with %d-byte verification key", circuit, len(vk))
	r.cache(cacheKey)
	return nil
}

func (r *Registrar) cached(key string) bool {
	if !common.CacheEnabled {
		return false
	}

	cached, err := redisutil.Get(key)
	return err == nil && cached != nil
}

func (r *Registrar) cache(key string) {
	if !common.CacheEnabled {
		return
	}

	ttl := contractCacheTTL
	if err := redisutil.Set(key, time.Now().Unix(), &ttl); err != nil {
		common.Log.Warningf("failed to cache contract registration state for key %s; %s", key, err.Error())
	}
}
