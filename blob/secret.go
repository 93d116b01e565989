package blob

import (
	"github.com/hyli-org/attest/codec"
	"github.com/hyli-org/attest/hyli"
)

// SecretContract is the contract name of the secret-check circuit variant
const SecretContract = "check_secret"

// SecretBlobCapacity is the compile-time blob buffer size of the secret-check circuit
const SecretBlobCapacity uint32 = 32

// HashPassword returns the 32-byte sha256 digest of the given password
func HashPassword(password string) []byte {
	return codec.Sha256([]byte(password))
}

// SecretHash derives the stored commitment
// sha256(identity || ':' || sha256(password)); the inner digest is the raw
// 32-byte value, not its hex encoding. The circuit performs the identical
// derivation over its private witness, so this must stay byte-for-byte
// deterministic.
func SecretHash(identity, password string) []byte {
	preimage := make([]byte, 0, len(identity)+1+32)
	preimage = append(preimage, []byte(identity)...)
	preimage = append(preimage, ':')
	preimage = append(preimage, HashPassword(password)...)
	return codec.Sha256(preimage)
}

// BuildSecretBlob derives the 32-byte secret-check blob for the given
// identity and password
func BuildSecretBlob(identity, password string) *hyli.Blob {
	return &hyli.Blob{
		ContractName: SecretContract,
		Data:         SecretHash(identity, password),
	}
}
