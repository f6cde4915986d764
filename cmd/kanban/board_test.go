package main

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/gateway"
)

func newTokenSource(creds *gateway.Credentials, current string, token *string, reads *int) *tokenSource {
	return &tokenSource{
		creds: creds,
		reload: func() (*config.Config, error) {
			*reads++
			if token == nil {
				return nil, errors.New("config unreadable")
			}
			cfg := &config.Config{}
			cfg.API.Token = *token
			return cfg, nil
		},
		logger:  slog.New(slog.DiscardHandler),
		current: current,
	}
}

func TestTokenSourceAcquiresEditedToken(t *testing.T) {
	creds := gateway.NewCredentials("old")
	token := "old"
	reads := 0
	src := newTokenSource(creds, "old", &token, &reads)

	creds.Invalidate()
	assert.False(t, src.refresh(), "the rejected token is not retried")
	assert.False(t, creds.Valid())

	token = "new"
	assert.True(t, src.refresh())
	assert.Equal(t, "new", creds.Token())
	assert.Equal(t, 2, reads)
}

func TestTokenSourceLeavesValidCredentialsAlone(t *testing.T) {
	creds := gateway.NewCredentials("good")
	token := "other"
	reads := 0
	src := newTokenSource(creds, "good", &token, &reads)

	assert.False(t, src.refresh())
	assert.Equal(t, "good", creds.Token())
	assert.Zero(t, reads)
}

func TestTokenSourceIgnoresEmptyTokenAndReadErrors(t *testing.T) {
	creds := gateway.NewCredentials("")
	empty := ""
	reads := 0
	assert.False(t, newTokenSource(creds, "", &empty, &reads).refresh())
	assert.False(t, newTokenSource(creds, "", nil, &reads).refresh())
	assert.False(t, creds.Valid())
	assert.Equal(t, 2, reads)
}

func TestTokenSourceThroughClient(t *testing.T) {
	client := gateway.New("http://127.0.0.1:1/api", gateway.NewCredentials("old"))
	client.Credentials().Invalidate()
	token := "new"
	reads := 0
	src := newTokenSource(client.Credentials(), "old", &token, &reads)

	assert.True(t, src.refresh())
	assert.Equal(t, "new", client.Credentials().Token())
}
