package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FieldElementSize is the serialized width of a BN254 scalar field element
const FieldElementSize = fr.Bytes

// DecodeError indicates that an encoded input could not be decoded
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s input; %s", e.Encoding, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Sha256 returns the 32-byte sha256 digest of the given input
func Sha256(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

// HexEncode returns the lowercase hex encoding of the given bytes
func HexEncode(data []byte) string {
	return hex.EncodeToString(data)
}

// Base64URLDecode decodes a base64url string per RFC 4648 §5; the standard
// alphabet's `+` and `/` are tolerated and mapped to `-` and `_`, and any
// trailing padding is stripped prior to decoding
func Base64URLDecode(encoded string) ([]byte, error) {
	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(encoded)
	normalized = strings.TrimRight(normalized, "=")

	decoded, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return nil, &DecodeError{
			Encoding: "base64url",
			Err:      err,
		}
	}

	return decoded, nil
}

// ZeroPad right-pads the given bytes with zeroes to the requested width;
// inputs longer than the width are never truncated
func ZeroPad(data []byte, width int) ([]byte, error) {
	if len(data) > width {
		return nil, fmt.Errorf("cannot zero-pad %d bytes to width %d", len(data), width)
	}

	padded := make([]byte, width)
	copy(padded, data)
	return padded, nil
}

// ReverseBytes returns a reversed copy of the given bytes
func ReverseBytes(data []byte) []byte {
	reversed := make([]byte, len(data))
	for i, b := range data {
		reversed[len(data)-1-i] = b
	}
	return reversed
}

// BigIntFromBytes interprets the given bytes as a big-endian unsigned integer
func BigIntFromBytes(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}

// FieldElementBytes parses a field element string, decimal or 0x-prefixed
// hex, and returns its canonical 32-byte big-endian encoding
func FieldElementBytes(element string) ([]byte, error) {
	var fe fr.Element
	if _, err := fe.SetString(element); err != nil {
		return nil, &DecodeError{
			Encoding: "field element",
			Err:      err,
		}
	}

	buf := fe.Bytes()
	return buf[:], nil
}
