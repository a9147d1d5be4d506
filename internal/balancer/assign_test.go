package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func TestInitialAssign_Serpentine(t *testing.T) {
	teams, err := InitialAssign(DemoPlayers(), 2)
	require.NoError(t, err)

	assert.Equal(t, [][]int64{{5, 2, 7, 10, 4}, {1, 6, 8, 3, 9}}, teams.PlayerIDs())

	// 实力最高的两名玩家（2100 和 1900）一定在不同的队伍
	assert.Equal(t, int64(5), teams[0][0].ID)
	assert.Equal(t, int64(1), teams[1][0].ID)
}

func TestInitialAssign_ThreeTeams(t *testing.T) {
	players := make([]*domain.Player, 0, 7)
	for i := 1; i <= 7; i++ {
		players = append(players, player(int64(i), float64(1000-i), domain.RoleDuelist))
	}

	teams, err := InitialAssign(players, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 6, 7}, {2, 5}, {3, 4}}, teams.PlayerIDs())
}

func TestInitialAssign_StableTies(t *testing.T) {
	players := []*domain.Player{
		player(3, 1000, domain.RoleDuelist),
		player(1, 1000, domain.RoleDuelist),
		player(2, 1000, domain.RoleDuelist),
	}

	teams, err := InitialAssign(players, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{3}, {1, 2}}, teams.PlayerIDs())

	// 不修改调用方的切片
	assert.Equal(t, int64(3), players[0].ID)
}

func TestInitialAssign_MoreTeamsThanPlayers(t *testing.T) {
	players := []*domain.Player{
		player(1, 1200, domain.RoleDuelist),
		player(2, 1100, domain.RoleDuelist),
	}

	teams, err := InitialAssign(players, 4)
	require.NoError(t, err)
	require.Len(t, teams, 4)
	assert.Equal(t, [][]int64{{1}, {2}, {}, {}}, teams.PlayerIDs())
}

func TestInitialAssign_Empty(t *testing.T) {
	teams, err := InitialAssign(nil, 3)
	require.NoError(t, err)
	require.Len(t, teams, 3)
	for _, team := range teams {
		assert.Empty(t, team)
	}
}

func TestInitialAssign_InvalidTeamCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := InitialAssign(DemoPlayers(), n)
		assert.ErrorIs(t, err, ErrInvalidTeamCount)
	}
}
