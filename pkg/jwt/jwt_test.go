package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

func TestSignParse_IdaYVuelta(t *testing.T) {
	token, err := SignSession(testSecret, "sid-123", "u1", "steadymonitor", time.Now().Add(time.Hour))
	require.NoError(t, err)

	sid, err := ParseSession(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sid)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := SignSession(testSecret, "sid-123", "u1", "steadymonitor", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = ParseSession("otro-secreto-de-al-menos-32-bytes!!", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Vencido(t *testing.T) {
	token, err := SignSession(testSecret, "sid-123", "u1", "steadymonitor", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ParseSession(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Basura(t *testing.T) {
	_, err := ParseSession(testSecret, "no-es-un-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = SignSession("", "sid", "u1", "x", time.Now().Add(time.Hour))
	assert.Error(t, err)
}
