package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCanManage(t *testing.T) {
	organizer := &User{ID: 2, Role: UserRoleOrganizer}
	other := &User{ID: 3, Role: UserRoleOrganizer}
	admin := &User{ID: 1, Role: UserRoleAdmin}
	lobby := &Lobby{ID: 10, CreatedBy: 2}

	assert.True(t, organizer.CanManage(lobby))
	assert.False(t, other.CanManage(lobby))
	assert.True(t, admin.CanManage(lobby))

	assert.True(t, admin.IsAdmin())
	assert.False(t, organizer.IsAdmin())
}

func TestUserOverviewJSON(t *testing.T) {
	overview := UserOverview{
		User:       User{ID: 2, Username: "zhangsan", PasswordHash: "hash", Role: UserRoleOrganizer},
		LobbyCount: 3,
	}

	data, err := json.Marshal(overview)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "zhangsan", m["username"])
	assert.Equal(t, 3.0, m["lobbyCount"])
	assert.NotContains(t, m, "PasswordHash")
	assert.NotContains(t, m, "passwordHash")
}
