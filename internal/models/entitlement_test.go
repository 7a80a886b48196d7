package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasFeature(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		token       string
		want        bool
	}{
		{
			name:        "wildcard passes any check",
			permissions: []string{PermissionAll},
			token:       "ai_diagnostics",
			want:        true,
		},
		{
			name:        "explicit token present",
			permissions: []string{"clients", "budgets"},
			token:       "budgets",
			want:        true,
		},
		{
			name:        "token absent",
			permissions: []string{"clients", "budgets"},
			token:       "inventory",
			want:        false,
		},
		{
			name:        "empty permissions",
			permissions: nil,
			token:       "clients",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := EntitlementStatus{Permissions: tt.permissions}
			assert.Equal(t, tt.want, status.HasFeature(tt.token))
		})
	}
}

func TestHasFeature_OrderIndependent(t *testing.T) {
	perms := PermissionsForTier(TierPremium)
	status := EntitlementStatus{Permissions: perms}

	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), perms...)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		permuted := EntitlementStatus{Permissions: shuffled}

		for _, token := range []string{"vehicles", "settings", "nonexistent"} {
			assert.Equal(t, status.HasFeature(token), permuted.HasFeature(token),
				"permuting permissions must not change the result for %q", token)
		}
	}
}

func TestPermissionsForTier(t *testing.T) {
	assert.ElementsMatch(t, []string{"clients", "budgets"}, PermissionsForTier(TierFree))
	assert.Contains(t, PermissionsForTier(TierEssencial), "automatic_backup")
	assert.NotContains(t, PermissionsForTier(TierEssencial), "inventory")
	assert.Contains(t, PermissionsForTier(TierPremium), "priority_support")

	// Возвращается копия: мутация результата не трогает базовый набор.
	perms := PermissionsForTier(TierFree)
	perms[0] = "mutated"
	assert.Equal(t, "clients", PermissionsForTier(TierFree)[0])
}

func TestIsAnnual(t *testing.T) {
	assert.True(t, IsAnnual("premium_anual"))
	assert.True(t, IsAnnual("ESSENCIAL_ANUAL"))
	assert.False(t, IsAnnual("premium_mensal"))
	assert.False(t, IsAnnual(""))
}
