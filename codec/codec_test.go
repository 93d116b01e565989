package codec

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256(t *testing.T) {
	digest := Sha256([]byte("secret123"))
	require.Len(t, digest, 32)

	expected := sha256.Sum256([]byte("secret123"))
	assert.Equal(t, expected[:], digest)

	// deterministic
	assert.Equal(t, digest, Sha256([]byte("secret123")))
	assert.NotEqual(t, digest, Sha256([]byte("secret124")))
}

func TestHexEncode(t *testing.T) {
	assert.Equal(t, "00ff10", HexEncode([]byte{0x00, 0xff, 0x10}))
	assert.Equal(t, "", HexEncode(nil))
}

func TestBase64URLDecode(t *testing.T) {
	decoded, err := Base64URLDecode("aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decoded)

	// trailing padding is tolerated
	decoded, err = Base64URLDecode("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decoded)

	// standard alphabet is mapped onto the url-safe one
	decoded, err = Base64URLDecode("+/8")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfb, 0xff}, decoded)

	_, err = Base64URLDecode("not*base64")
	require.Error(t, err)
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestZeroPad(t *testing.T) {
	padded, err := ZeroPad([]byte{0x01, 0x02}, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x00, 0x00}, padded)

	padded, err = ZeroPad([]byte{0x01, 0x02}, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, padded)

	_, err = ZeroPad([]byte{0x01, 0x02, 0x03}, 2)
	assert.Error(t, err)
}

func TestReverseBytes(t *testing.T) {
	assert.Equal(t, []byte{0x03, 0x02, 0x01}, ReverseBytes([]byte{0x01, 0x02, 0x03}))
	assert.Empty(t, ReverseBytes(nil))

	original := []byte{0xaa, 0xbb}
	ReverseBytes(original)
	assert.Equal(t, []byte{0xaa, 0xbb}, original, "input must not be mutated")
}

func TestBigIntFromBytes(t *testing.T) {
	assert.Equal(t, int64(0x0102), BigIntFromBytes([]byte{0x01, 0x02}).Int64())
	assert.Equal(t, int64(0), BigIntFromBytes(nil).Int64())
}

func TestFieldElementBytes(t *testing.T) {
	buf, err := FieldElementBytes("1")
	require.NoError(t, err)
	require.Len(t, buf, FieldElementSize)
	assert.Equal(t, int64(1), new(big.Int).SetBytes(buf).Int64())

	// hex and decimal encodings of the same value agree
	decimal, err := FieldElementBytes("65535")
	require.NoError(t, err)
	hexadecimal, err := FieldElementBytes("0xffff")
	require.NoError(t, err)
	assert.Equal(t, decimal, hexadecimal)

	_, err = FieldElementBytes("not-a-number")
	assert.Error(t, err)
}
