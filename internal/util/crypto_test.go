package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _ := GenerateToken()
		token2, _ := GenerateToken()
		assert.NotEqual(t, token1, token2)
	})
}

func TestHashToken(t *testing.T) {
	t.Run("returns 64 character hex string", func(t *testing.T) {
		hash := HashToken("test-token")
		assert.Len(t, hash, 64)
	})

	t.Run("same input produces same hash", func(t *testing.T) {
		assert.Equal(t, HashToken("test-token"), HashToken("test-token"))
	})

	t.Run("different input produces different hash", func(t *testing.T) {
		assert.NotEqual(t, HashToken("token-1"), HashToken("token-2"))
	})
}

func TestHmacSHA256(t *testing.T) {
	t.Run("same inputs produce same result", func(t *testing.T) {
		assert.Equal(t, HmacSHA256("secret", "data"), HmacSHA256("secret", "data"))
	})

	t.Run("different secret produces different result", func(t *testing.T) {
		assert.NotEqual(t, HmacSHA256("secret1", "data"), HmacSHA256("secret2", "data"))
	})

	t.Run("produces expected HMAC", func(t *testing.T) {
		// Known test vector
		result := HmacSHA256("key", "The quick brown fox jumps over the lazy dog")
		assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", result)
	})
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "def"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
	assert.True(t, ConstantTimeEqual("", ""))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "https://****", MaskSecret("https://hooks.example.com/wf/123"))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := "0000000000000000000000000000000000000000000000000000000000000001"

	ciphertext, err := Encrypt(key, "https://hooks.example.com/wf/123")
	require.NoError(t, err)
	assert.NotEqual(t, "https://hooks.example.com/wf/123", ciphertext)

	plaintext, err := Decrypt(key, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/wf/123", plaintext)
}

func TestEncryptRejectsBadKey(t *testing.T) {
	_, err := Encrypt("deadbeef", "value")
	assert.Error(t, err)

	_, err = Encrypt("not-hex", "value")
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	key := "0000000000000000000000000000000000000000000000000000000000000001"
	_, err := Decrypt(key, "bm90LWEtY2lwaGVydGV4dA==")
	assert.Error(t, err)
}

func TestIsValidSiteName(t *testing.T) {
	valid := []string{"001-chatbot", "002-video-generator", "chatbot", "a1"}
	for _, s := range valid {
		assert.True(t, IsValidSiteName(s), s)
	}

	invalid := []string{"", "-leading", "trailing-", "UPPER", "with space", "under_score"}
	for _, s := range invalid {
		assert.False(t, IsValidSiteName(s), s)
	}
}

func TestIsValidComponentName(t *testing.T) {
	assert.True(t, IsValidComponentName("ChatbotTemplate"))
	assert.True(t, IsValidComponentName("FormTemplate2"))
	assert.False(t, IsValidComponentName(""))
	assert.False(t, IsValidComponentName("1Leading"))
	assert.False(t, IsValidComponentName("has-hyphen"))
}
