package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

func TestContactSubmit(t *testing.T) {
	f := newFixture(t)
	svc := NewContactService(f.store.Contacts(), nil, zap.NewNop())

	msg, err := svc.Submit(context.Background(), dto.ContactRequest{
		Name:    "  Sam  ",
		Email:   "sam@example.com",
		Subject: "Partnership",
		Message: "We would like to sponsor your next event.",
		IP:      "203.0.113.5",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Sam", msg.Name)

	stored := f.store.ContactMessages()
	require.Len(t, stored, 1)
	assert.Equal(t, "203.0.113.5", stored[0].IPAddress)
}

func TestContactSubmitValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewContactService(f.store.Contacts(), nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), dto.ContactRequest{Name: "S", Email: "nope", Message: "short"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	details := appErrors.FromError(err).Details
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "message")
	assert.Empty(t, f.store.ContactMessages())
}
