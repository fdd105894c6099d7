package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelAraag/pr-manager-cloud/internal/ui"
)

func tokenWithPayload(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString(raw)
	return header + "." + body + ".signature"
}

func storeWith(token string) *Store {
	return NewStore(func() string { return token })
}

func TestDecodeTokenRoundTrip(t *testing.T) {
	token := tokenWithPayload(t, map[string]any{"role": "Admin", "sub": "alice"})
	claims := DecodeToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "Admin", claims["role"])
	assert.Equal(t, "alice", claims["sub"])
}

func TestDecodeTokenMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"no dots":      "nodotshere",
		"two parts":    "a.b",
		"four parts":   "a.b.c.d",
		"garbage body": "x.!!!not-base64!!!.y",
		"not json":     "x." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".y",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, DecodeToken(token))
		})
	}
}

func TestDecodeTokenPaddedBase64(t *testing.T) {
	// Some encoders emit padded standard base64 for the payload segment.
	raw, err := json.Marshal(map[string]any{"role": "QA"})
	require.NoError(t, err)
	body := base64.StdEncoding.EncodeToString(raw)
	claims := DecodeToken("h." + body + ".s")
	require.NotNil(t, claims)
	assert.Equal(t, "QA", claims["role"])
}

func TestRolesClaimKeyPriority(t *testing.T) {
	// The .NET URI key wins over every short form.
	token := tokenWithPayload(t, map[string]any{
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": "Admin",
		"role":  "Dev",
		"Roles": []string{"QA"},
	})
	assert.Equal(t, []string{"Admin"}, storeWith(token).Roles())

	token = tokenWithPayload(t, map[string]any{"Roles": []any{"QA", "Dev"}})
	assert.Equal(t, []string{"QA", "Dev"}, storeWith(token).Roles())
}

func TestRolesStringWrapsToList(t *testing.T) {
	token := tokenWithPayload(t, map[string]any{"role": "Dev"})
	s := storeWith(token)
	assert.Equal(t, []string{"Dev"}, s.Roles())
	assert.True(t, s.IsDeveloper())
	assert.False(t, s.IsAdmin())
}

func TestRolesEmptyWithoutToken(t *testing.T) {
	s := storeWith("")
	assert.Empty(t, s.Roles())
	assert.False(t, s.IsAdmin())
	assert.False(t, s.Can(PermApprovePR))
}

func TestRolesRecomputedFromLiveToken(t *testing.T) {
	token := tokenWithPayload(t, map[string]any{"role": "Admin"})
	s := NewStore(func() string { return token })
	assert.True(t, s.IsAdmin())

	token = ""
	assert.False(t, s.IsAdmin())
}

func TestCan(t *testing.T) {
	qa := storeWith(tokenWithPayload(t, map[string]any{"role": "QA"}))
	assert.True(t, qa.Can(PermManageSprints))
	assert.True(t, qa.Can(PermRequestVersion))
	assert.False(t, qa.Can(PermApprovePR))
	assert.False(t, qa.Can(PermDeployToStaging))

	admin := storeWith(tokenWithPayload(t, map[string]any{"role": "Admin"}))
	assert.True(t, admin.Can(PermApprovePR))
	assert.True(t, admin.Can(PermDeleteBatch))
}

func TestApplyVisibility(t *testing.T) {
	plain := lipgloss.NewStyle()
	tree := ui.Group(
		ui.Text("always visible"),
		ui.Control(ui.Binding{EntityID: "pr:1", Action: "approve", Key: "a"}, plain, PermApprovePR),
		ui.Control(ui.Binding{EntityID: "pr:1", Action: "edit", Key: "e"}, plain, nil),
	)

	dev := storeWith(tokenWithPayload(t, map[string]any{"role": "Dev"}))
	dev.ApplyVisibility(tree)

	bindings := ui.Bindings(tree)
	require.Len(t, bindings, 1)
	assert.Equal(t, "edit", bindings[0].Action)

	// Re-rendering rebuilds the tree; running the pass as admin must show the
	// gated control again on the fresh tree.
	tree = ui.Group(
		ui.Control(ui.Binding{EntityID: "pr:1", Action: "approve", Key: "a"}, plain, PermApprovePR),
	)
	admin := storeWith(tokenWithPayload(t, map[string]any{"role": "Admin"}))
	admin.ApplyVisibility(tree)
	assert.Len(t, ui.Bindings(tree), 1)
}
