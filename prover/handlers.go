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
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	dbconf "github.com/kthomas/go-db-config"
	natsutil "github.com/kthomas/go-natsutil"
	uuid "github.com/kthomas/go.uuid"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/hyli-org/attest/blob"
	"github.com/hyli-org/attest/codec"
	"github.com/hyli-org/attest/common"
	"github.com/hyli-org/attest/hyli"
	zkp "github.com/hyli-org/attest/zkp/providers"
)

// maximum private witness slot sizes of the circuit ABI
const passwordWitnessWidth = 64
const tokenWitnessWidth = 1024

// InstallAPI registers the proof and contract API handlers with gin
func InstallAPI(r *gin.Engine) {
	r.GET("/status", statusHandler)

	r.POST("/api/v1/proofs", createProofHandler)
	r.GET("/api/v1/proofs/:id", proofDetailsHandler)

	r.POST("/api/v1/contracts/:name", registerContractHandler)
}

type proofParams struct {
	Contract string          `json:"contract"`
	Identity string          `json:"identity"`
	Password string          `json:"password"`
	Token    string          `json:"token"`
	JWKS     json.RawMessage `json:"jwks"`

	TxHash      string `json:"tx_hash"`
	Index       uint32 `json:"index"`
	BlobIndex   uint32 `json:"blob_index"`
	TxBlobCount uint32 `json:"tx_blob_count"`

	PrivateInputs map[string]interface{} `json:"private_inputs"`

	Async     bool `json:"async"`
	Broadcast bool `json:"broadcast"`
}

func statusHandler(c *gin.Context) {
	common.Render(nil, 204, c)
}

// build a blob and proof transaction for the requested circuit variant
func createProofHandler(c *gin.Context) {
	buf, err := c.GetRawData()
	if err != nil {
		common.RenderError(err.Error(), 400, c)
		return
	}

	params := &proofParams{}
	if err := json.Unmarshal(buf, params); err != nil {
		common.RenderError(err.Error(), 422, c)
		return
	}

	// the consumer completing an async proof holds no broadcast context, so
	// a deferred proof transaction would never reach the node; async callers
	// poll the record and submit the proof transaction themselves
	if params.Async && params.Broadcast {
		renderProtocolError(&hyli.ValidationError{
			Field:   "async",
			Message: "broadcast is not supported for async proof generation",
		}, c)
		return
	}

	packedBlob, identity, capacity, private, err := resolveBlob(params)
	if err != nil {
		renderProtocolError(err, c)
		return
	}

	backend := zkp.BackendFactory(common.DefaultProvingBackend)
	if backend == nil {
		common.RenderError("failed to resolve proving backend", 500, c)
		return
	}

	client := hyli.InitClient(common.DefaultHyliNodeURL)
	ctx := c.Request.Context()

	txHash := params.TxHash
	if params.Broadcast {
		registrar := InitRegistrar(client, backend)
		if err := registrar.EnsureContract(ctx, packedBlob.ContractName); err != nil {
			common.RenderError(err.Error(), 502, c)
			return
		}

		txHash, err = client.SendBlobTx(ctx, identity, []*hyli.Blob{packedBlob})
		if err != nil {
			common.RenderError(err.Error(), 502, c)
			return
		}
	}

	output, err := hyli.Assemble(packedBlob, identity, &hyli.TxContext{
		TxHash:      txHash,
		Index:       params.Index,
		BlobIndex:   params.BlobIndex,
		TxBlobCount: params.TxBlobCount,
	}, capacity)
	if err != nil {
		renderProtocolError(err, c)
		return
	}

	pipeline := InitPipeline(backend)
	witness, err := pipeline.Execute(ctx, packedBlob.ContractName, output, private)
	if err != nil {
		renderProtocolError(err, c)
		return
	}

	record := &ProofRecord{
		ContractName: common.StringOrNil(packedBlob.ContractName),
		Identity:     common.StringOrNil(identity),
		TxHash:       common.StringOrNil(txHash),
		BlobIndex:    params.BlobIndex,
		TxBlobCount:  params.TxBlobCount,
		Blob:         packedBlob.Data,
		Witness:      witness,
	}

	db := dbconf.DatabaseConnection()
	if !record.Create(db) {
		obj := map[string]interface{}{}
		obj["errors"] = record.Errors
		common.Render(obj, 422, c)
		return
	}

	if params.Async {
		payload, _ := json.Marshal(map[string]interface{}{
			"proof_id": record.ID.String(),
		})
		natsutil.NatsJetstreamPublish(natsProofPendingSubject, payload)
		common.Render(record, 202, c)
		return
	}

	tx, err := pipeline.ProveWitness(ctx, packedBlob.ContractName, witness)
	if err != nil {
		record.updateStatus(db, proofStatusFailed, common.StringOrNil(err.Error()))
		renderProtocolError(err, c)
		return
	}

	record.Proof = tx.Proof
	record.ProgramID = tx.ProgramID
	record.updateStatus(db, proofStatusCompleted, nil)

	response := map[string]interface{}{
		"record":            record,
		"blob":              packedBlob,
		"proof_transaction": tx,
	}

	if params.Broadcast {
		proofTxHash, err := client.SendProofTx(ctx, tx)
		if err != nil {
			common.RenderError(err.Error(), 502, c)
			return
		}
		response["proof_tx_hash"] = proofTxHash
	}

	common.Render(response, 201, c)
}

// fetch proof record details
func proofDetailsHandler(c *gin.Context) {
	proofID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		common.RenderError("bad request", 400, c)
		return
	}

	db := dbconf.DatabaseConnection()
	record := &ProofRecord{}
	db.Where("id = ?", proofID).Find(&record)

	if record == nil || record.ID == uuid.Nil {
		common.RenderError("proof not found", 404, c)
		return
	}

	common.Render(record, 200, c)
}

// idempotently register the named contract with the node
func registerContractHandler(c *gin.Context) {
	backend := zkp.BackendFactory(common.DefaultProvingBackend)
	if backend == nil {
		common.RenderError("failed to resolve proving backend", 500, c)
		return
	}

	registrar := InitRegistrar(hyli.InitClient(common.DefaultHyliNodeURL), backend)
	if err := registrar.EnsureContract(c.Request.Context(), c.Param("name")); err != nil {
		common.RenderError(err.Error(), 502, c)
		return
	}

	common.Render(nil, 204, c)
}

// resolveBlob builds the variant-specific blob and default private witness
// inputs for the given request
func resolveBlob(params *proofParams) (*hyli.Blob, string, uint32, map[string]interface{}, error) {
	switch params.Contract {
	case blob.SecretContract:
		if params.Identity == "" || params.Password == "" {
			return nil, "", 0, nil, &hyli.ValidationError{Field: "contract", Message: "identity and password required"}
		}

		private := params.PrivateInputs
		if private == nil {
			var err error
			private, err = secretWitnessInputs(params.Password)
			if err != nil {
				return nil, "", 0, nil, err
			}
		}

		return blob.BuildSecretBlob(params.Identity, params.Password), params.Identity, blob.SecretBlobCapacity, private, nil

	case blob.JWTContract:
		if params.Token == "" || len(params.JWKS) == 0 {
			return nil, "", 0, nil, &hyli.ValidationError{Field: "contract", Message: "token and jwks required"}
		}

		keyset, err := jwk.Parse(params.JWKS)
		if err != nil {
			return nil, "", 0, nil, &hyli.ValidationError{Field: "jwks", Message: err.Error()}
		}

		packed, claims, err := blob.BuildJWTBlobFromToken([]byte(params.Token), keyset)
		if err != nil {
			return nil, "", 0, nil, err
		}

		identity := params.Identity
		if identity == "" {
			identity = claims.Email
		}

		private := params.PrivateInputs
		if private == nil {
			private, err = tokenWitnessInputs(params.Token)
			if err != nil {
				return nil, "", 0, nil, err
			}
		}

		return packed, identity, blob.JWTBlobCapacity, private, nil
	}

	return nil, "", 0, nil, &hyli.ValidationError{Field: "contract", Message: "unsupported contract"}
}

func secretWitnessInputs(password string) (map[string]interface{}, error) {
	padded, err := codec.ZeroPad([]byte(password), passwordWitnessWidth)
	if err != nil {
		return nil, &hyli.ValidationError{Field: "password", Message: err.Error()}
	}

	return map[string]interface{}{
		"password":     hyli.ByteValues(padded),
		"password_len": uint32(len(password)),
	}, nil
}

func tokenWitnessInputs(token string) (map[string]interface{}, error) {
	padded, err := codec.ZeroPad([]byte(token), tokenWitnessWidth)
	if err != nil {
		return nil, &hyli.ValidationError{Field: "token", Message: err.Error()}
	}

	return map[string]interface{}{
		"token":     hyli.ByteValues(padded),
		"token_len": uint32(len(token)),
	}, nil
}

// renderProtocolError maps the error taxonomy onto response codes:
// validation and witness errors are the caller's fault, proof generation
// failures are the backend's
func renderProtocolError(err error, c *gin.Context) {
	var validationErr *hyli.ValidationError
	var witnessErr *zkp.WitnessError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &witnessErr):
		common.RenderError(err.Error(), 422, c)
	default:
		common.RenderError(err.Error(), 500, c)
	}
}
