package jwtservice_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/pkg/entity"
	jwtservice "github.com/limbo/habitstreak/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	s := jwtservice.New("secret")
	user := &entity.User{ID: uuid.New(), Name: "test_name"}
	token, err := s.GenerateToken(user)
	require.NoError(t, err)
	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Name, claims.Username)
}

func TestParseInvalidToken(t *testing.T) {
	t.Parallel()
	user := &entity.User{ID: uuid.New(), Name: "test_name"}
	t.Run("foreign secret", func(t *testing.T) {
		token, err := jwtservice.New("other").GenerateToken(user)
		require.NoError(t, err)
		_, err = jwtservice.New("secret").ParseToken(token)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("expired", func(t *testing.T) {
		s := jwtservice.NewWithTTL("secret", -time.Minute)
		token, err := s.GenerateToken(user)
		require.NoError(t, err)
		_, err = s.ParseToken(token)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := jwtservice.New("secret").ParseToken("not.a.token")
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
}
