package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.NotEqual(t, "password123", digest)

	assert.True(t, Verify("password123", digest))
	assert.False(t, Verify("wrongpassword", digest))
}

func TestHash_UniqueSalt(t *testing.T) {
	first, err := Hash("password123")
	assert.NoError(t, err)
	second, err := Hash("password123")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("password123", first))
	assert.True(t, Verify("password123", second))
}

func TestVerify_MalformedDigest(t *testing.T) {
	assert.False(t, Verify("password123", "not-a-bcrypt-digest"))
	assert.False(t, Verify("password123", ""))
}
