package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParseToken(t *testing.T) {
	maker := NewMaker("test_secret_key_1234567890", 15*time.Minute)

	tests := []struct {
		name     string
		username string
		role     string
		userUID  string
	}{
		{
			name:     "admin user",
			username: "admin_user",
			role:     "admin",
			userUID:  "3d6f0e8a-1111-4222-8333-444455556666",
		},
		{
			name:     "regular user",
			username: "oficina_dono",
			role:     "user",
			userUID:  "9a1b2c3d-aaaa-bbbb-cccc-ddddeeee0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.username, tt.role, tt.userUID)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.userUID, claims.UserUID)
		})
	}
}

func TestMaker_ParseToken_WrongKey(t *testing.T) {
	maker := NewMaker("correct_key", 15*time.Minute)
	other := NewMaker("another_key", 15*time.Minute)

	token, err := maker.GenerateToken("user", "user", "uid")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestMaker_ParseToken_Expired(t *testing.T) {
	maker := NewMaker("secret", -time.Minute)

	token, err := maker.GenerateToken("user", "user", "uid")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	require.Error(t, err)
}
