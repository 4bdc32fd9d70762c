package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidProgramID(t *testing.T) {
	assert.True(t, ValidProgramID("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))
	assert.True(t, ValidProgramID("11111111111111111111111111111111"))

	assert.False(t, ValidProgramID(""))
	assert.False(t, ValidProgramID("too-short"))
	assert.False(t, ValidProgramID("contains0OIl_invalid_base58_chars_here_xxxx"))
	assert.False(t, ValidProgramID("wayTooLongwayTooLongwayTooLongwayTooLongwayTooLong"))
}

func TestEncodeBase58(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", encodeBase58(make([]byte, 32)))
	assert.NotEmpty(t, encodeBase58([]byte{1, 2, 3}))
}
