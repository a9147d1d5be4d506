package utils

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")

	// 拼音前缀 + 1~3 位数字
	assert.True(t, strings.HasPrefix(username, "w"))
	assert.NotContains(t, username, "王")
}

func TestGenerateRandomPlayers(t *testing.T) {
	roles := []domain.Role{domain.RoleDuelist, domain.RoleSentinel}
	players := GenerateRandomPlayers(7, 12, roles, "example.com")

	assert.Len(t, players, 12)
	nicknames := make(map[string]bool)
	for _, p := range players {
		assert.Equal(t, int64(7), p.LobbyID)
		assert.True(t, slices.Contains(roles, p.Role))
		assert.GreaterOrEqual(t, p.Skill, 1000.0)
		assert.Less(t, p.Skill, 3000.0)
		assert.True(t, strings.HasSuffix(p.Email, "@example.com"))
		assert.False(t, nicknames[p.Nickname])
		nicknames[p.Nickname] = true
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, []rune(GenerateRandomPassword(12)), 12)
}

func TestGenerateRandomLobby(t *testing.T) {
	lobby := GenerateRandomLobby(3, 5)
	assert.Equal(t, int32(3), lobby.NumTeams)
	assert.Equal(t, int64(5), lobby.CreatedBy)
	assert.True(t, strings.HasPrefix(lobby.Name, "房间"))
	assert.NoError(t, ValidateLobby(lobby))
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("seed-password", "example.com")
	assert.NoError(t, err)
	assert.Equal(t, domain.UserRoleOrganizer, user.Role)
	assert.True(t, strings.HasSuffix(user.Email, "@example.com"))
	assert.NotEqual(t, "seed-password", user.PasswordHash)
}
