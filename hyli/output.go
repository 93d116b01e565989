package hyli

import (
	"fmt"

	"github.com/hyli-org/attest/codec"
)

// TxContext carries the caller-supplied transaction coordinates a record is
// assembled against
type TxContext struct {
	TxHash      string
	Index       uint32
	BlobIndex   uint32
	TxBlobCount uint32
}

// Assemble builds the public-input record wrapping the given blob. Every
// padded field records its true length; an oversized blob, identity, tx hash
// or contract name hard-fails with a ValidationError since truncation is
// never silently permitted. A record that assembles with the wrong capacity
// constant is valid against a different circuit variant, so callers must pass
// the capacity of the circuit they intend to prove against.
func Assemble(blob *Blob, identity string, txContext *TxContext, blobCapacity uint32) (*Output, error) {
	if blob == nil {
		return nil, &ValidationError{Field: "blob", Message: "no blob provided"}
	}

	if txContext == nil {
		return nil, &ValidationError{Field: "tx_context", Message: "no transaction context provided"}
	}

	if uint32(len(blob.Data)) > blobCapacity {
		return nil, &ValidationError{
			Field:   "blob",
			Message: fmt.Sprintf("%d-byte blob exceeds %d-byte circuit capacity", len(blob.Data), blobCapacity),
		}
	}

	identityPadded, err := codec.ZeroPad([]byte(identity), IdentityWidth)
	if err != nil {
		return nil, &ValidationError{Field: "identity", Message: err.Error()}
	}

	txHashPadded, err := codec.ZeroPad([]byte(txContext.TxHash), TxHashWidth)
	if err != nil {
		return nil, &ValidationError{Field: "tx_hash", Message: err.Error()}
	}

	contractNamePadded, err := codec.ZeroPad([]byte(blob.ContractName), ContractNameWidth)
	if err != nil {
		return nil, &ValidationError{Field: "blob_contract_name", Message: err.Error()}
	}

	blobPadded, err := codec.ZeroPad(blob.Data, int(blobCapacity))
	if err != nil {
		return nil, &ValidationError{Field: "blob", Message: err.Error()}
	}

	return &Output{
		Version:             OutputVersion,
		InitialState:        make([]byte, StateWidth),
		NextState:           make([]byte, StateWidth),
		Identity:            identityPadded,
		IdentityLen:         uint32(len(identity)),
		TxHash:              txHashPadded,
		Index:               txContext.Index,
		BlobNumber:          1,
		BlobIndex:           txContext.BlobIndex,
		BlobContractName:    contractNamePadded,
		BlobContractNameLen: uint32(len(blob.ContractName)),
		BlobCapacity:        blobCapacity,
		BlobLen:             uint32(len(blob.Data)),
		Blob:                blobPadded,
		TxBlobCount:         txContext.TxBlobCount,
		Success:             true,
	}, nil
}
