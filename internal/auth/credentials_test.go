package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoVerifier(t *testing.T) {
	v := DemoVerifier{}

	assert.NoError(t, v.Verify("anyone", "anything"))
	assert.ErrorIs(t, v.Verify("", "password"), ErrInvalidCredentials)
	assert.ErrorIs(t, v.Verify("user", ""), ErrInvalidCredentials)
}

func TestStaticVerifier(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	v := NewStaticVerifier(map[string]string{"alice": hash})

	assert.NoError(t, v.Verify("alice", "s3cret"))
	assert.ErrorIs(t, v.Verify("alice", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, v.Verify("bob", "s3cret"), ErrInvalidCredentials)
}
