package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	auth := NewAuthService("secret", "admin", "pw")

	_, err := auth.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := auth.Login("admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, AuthorID("admin"), resp.AuthorID)

	claims, err := auth.ValidateAuthorToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AuthorID, claims.AuthorID)

	again, err := auth.Login("admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, resp.AuthorID, again.AuthorID, "author ids are stable across logins")
}

func TestAuthService_TokensAreNotInterchangeable(t *testing.T) {
	auth := NewAuthService("secret", "admin", "pw")

	login, err := auth.Login("admin", "pw")
	require.NoError(t, err)
	respondent, err := auth.GenerateRespondentToken("survey", "s_1", time.Hour)
	require.NoError(t, err)

	_, err = auth.ValidateRespondentToken(login.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = auth.ValidateAuthorToken(respondent)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService("other-secret", "admin", "pw")
	_, err = other.ValidateRespondentToken(respondent)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RespondentTokenExpires(t *testing.T) {
	auth := NewAuthService("secret", "admin", "pw")

	token, err := auth.GenerateRespondentToken("survey", "s_1", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateRespondentToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
