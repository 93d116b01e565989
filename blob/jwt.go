package blob

import (
	"encoding/base64"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"

	"github.com/hyli-org/attest/codec"
	"github.com/hyli-org/attest/hyli"
)

// JWTContract is the contract name of the JWT circuit variant
const JWTContract = "check_jwt"

// JWTBlobCapacity is the compile-time blob buffer size of the JWT circuit
const JWTBlobCapacity uint32 = 512

// nonceWidth is the fixed ASCII nonce slot inside the JWT blob
const nonceWidth = 16

// IdentityClaims are the claims the JWT circuit commits to
type IdentityClaims struct {
	Email string
	Nonce string
	KeyID string
}

// ExtractClaims pulls the email, nonce and signing key id out of a compact
// JWT. Signature verification is out of scope here; the token's authenticity
// is what the circuit itself attests to. A missing claim fails with a
// ValidationError since retrying with the same token cannot succeed.
func ExtractClaims(token []byte) (*IdentityClaims, error) {
	parsed, err := jwt.ParseInsecure(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JWT")
	}

	email, ok := claimString(parsed, "email")
	if !ok {
		return nil, &hyli.ValidationError{Field: "token", Message: "missing email claim"}
	}

	nonce, ok := claimString(parsed, "nonce")
	if !ok {
		return nil, &hyli.ValidationError{Field: "token", Message: "missing nonce claim"}
	}

	msg, err := jws.Parse(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JWS envelope")
	}

	signatures := msg.Signatures()
	if len(signatures) == 0 {
		return nil, &hyli.ValidationError{Field: "token", Message: "no signature present"}
	}

	kid := signatures[0].ProtectedHeaders().KeyID()
	if kid == "" {
		return nil, &hyli.ValidationError{Field: "token", Message: "missing kid header"}
	}

	return &IdentityClaims{
		Email: email,
		Nonce: nonce,
		KeyID: kid,
	}, nil
}

// ResolveModulus finds the RSA signing key matching the given kid in the
// keyset and returns its modulus in base64url form
func ResolveModulus(keyset jwk.Set, kid string) (string, error) {
	key, ok := keyset.LookupKeyID(kid)
	if !ok {
		return "", &hyli.ValidationError{
			Field:   "kid",
			Message: fmt.Sprintf("no signing key matches kid %s", kid),
		}
	}

	rsaKey, ok := key.(jwk.RSAPublicKey)
	if !ok {
		return "", &hyli.ValidationError{
			Field:   "kid",
			Message: fmt.Sprintf("signing key %s is not an RSA public key", kid),
		}
	}

	return base64.RawURLEncoding.EncodeToString(rsaKey.N()), nil
}

// BuildJWTBlob packs the JWT commitment:
//
//	poseidon2(email) || ':' || nonce zero-padded to 16 || ':' || reverse(modulus)
//
// The `:` separators and the byte-reversal of the modulus are protocol
// constants; the circuit expects the modulus in little-endian limb order
// while the mail hash and nonce remain big-endian/ASCII. Getting the
// reversal wrong yields a blob that still proves, so it is never re-derived
// from intent, only preserved.
func BuildJWTBlob(email, nonce, modulusB64 string) (*hyli.Blob, error) {
	if len(nonce) > nonceWidth {
		return nil, &hyli.ValidationError{
			Field:   "nonce",
			Message: fmt.Sprintf("%d-byte nonce encoding exceeds the %d-byte slot", len(nonce), nonceWidth),
		}
	}

	modulus, err := codec.Base64URLDecode(modulusB64)
	if err != nil {
		return nil, &hyli.ValidationError{Field: "modulus", Message: err.Error()}
	}

	noncePadded, err := codec.ZeroPad([]byte(nonce), nonceWidth)
	if err != nil {
		return nil, &hyli.ValidationError{Field: "nonce", Message: err.Error()}
	}

	data := make([]byte, 0, 32+1+nonceWidth+1+len(modulus))
	data = append(data, mailHash(email)...)
	data = append(data, ':')
	data = append(data, noncePadded...)
	data = append(data, ':')
	data = append(data, codec.ReverseBytes(modulus)...)

	return &hyli.Blob{
		ContractName: JWTContract,
		Data:         data,
	}, nil
}

// BuildJWTBlobFromToken extracts claims from the given token, resolves the
// signing key modulus from the keyset and packs the JWT blob
func BuildJWTBlobFromToken(token []byte, keyset jwk.Set) (*hyli.Blob, *IdentityClaims, error) {
	claims, err := ExtractClaims(token)
	if err != nil {
		return nil, nil, err
	}

	modulus, err := ResolveModulus(keyset, claims.KeyID)
	if err != nil {
		return nil, nil, err
	}

	packed, err := BuildJWTBlob(claims.Email, claims.Nonce, modulus)
	if err != nil {
		return nil, nil, err
	}

	return packed, claims, nil
}

// mailHash maps the email bytes into the scalar field and hashes them with
// poseidon2, returning the 32-byte big-endian digest
func mailHash(email string) []byte {
	var fe fr.Element
	fe.SetBigInt(codec.BigIntFromBytes([]byte(email)))
	feBytes := fe.Bytes()

	hasher := poseidon2.NewMerkleDamgardHasher()
	hasher.Write(feBytes[:])
	return hasher.Sum(nil)
}

func claimString(token jwt.Token, name string) (string, bool) {
	value, ok := token.Get(name)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}
