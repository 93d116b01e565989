package hyli

// OutputVersion is the fixed version identifier of the public-input record
const OutputVersion uint32 = 1

// VerifierNoir is the verifier tag carried by every proof transaction in this circuit family
const VerifierNoir = "noir"

// Fixed field widths of the HyliOutput public-input ABI
const (
	StateWidth        = 4
	IdentityWidth     = 256
	TxHashWidth       = 64
	ContractNameWidth = 256
)

// Blob is a named byte payload attached to a ledger transaction; its
// contents are the secret commitment a circuit proves knowledge of
type Blob struct {
	ContractName string `json:"contract_name"`
	Data         []byte `json:"data"`
}

// ProofTransaction binds a reconstructed proof to the contract it proves
// against; Proof is the canonical concatenation of the 32-byte big-endian
// public inputs followed by the raw backend proof bytes
type ProofTransaction struct {
	ContractName string `json:"contract_name"`
	ProgramID    []byte `json:"program_id"`
	Verifier     string `json:"verifier"`
	Proof        []byte `json:"proof"`
}

// Contract descriptor as registered with the node
type Contract struct {
	Name            string `json:"contract_name"`
	Verifier        string `json:"verifier"`
	ProgramID       []byte `json:"program_id"`
	StateCommitment []byte `json:"state_commitment"`
}

// Output is the public-input record shared by every circuit variant. Padded
// fields carry their true, unpadded length in the companion *_len field; the
// padded tail beyond that length is zero. The circuit re-derives its own blob
// from witness data and asserts byte-equality against Blob, so these
// invariants are enforced at assembly time, not left to the circuit.
type Output struct {
	Version             uint32
	InitialState        []byte
	NextState           []byte
	Identity            []byte
	IdentityLen         uint32
	TxHash              []byte
	Index               uint32
	BlobNumber          uint32
	BlobIndex           uint32
	BlobContractName    []byte
	BlobContractNameLen uint32
	BlobCapacity        uint32
	BlobLen             uint32
	Blob                []byte
	TxBlobCount         uint32
	Success             bool
}

// CircuitInputs flattens the record into the named-input map consumed by
// circuit execution; byte sequences become integer arrays
func (o *Output) CircuitInputs() map[string]interface{} {
	return map[string]interface{}{
		"version":                o.Version,
		"initial_state":          ByteValues(o.InitialState),
		"next_state":             ByteValues(o.NextState),
		"identity":               ByteValues(o.Identity),
		"identity_len":           o.IdentityLen,
		"tx_hash":                ByteValues(o.TxHash),
		"index":                  o.Index,
		"blob_number":            o.BlobNumber,
		"blob_index":             o.BlobIndex,
		"blob_contract_name":     ByteValues(o.BlobContractName),
		"blob_contract_name_len": o.BlobContractNameLen,
		"blob_len":               o.BlobLen,
		"blob":                   ByteValues(o.Blob),
		"tx_blob_count":          o.TxBlobCount,
		"success":                o.Success,
	}
}

// ByteValues widens a byte sequence into the integer array form circuit
// inputs are expressed in
func ByteValues(data []byte) []uint32 {
	values := make([]uint32, len(data))
	for i, b := range data {
		values[i] = uint32(b)
	}
	return values
}
