package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func demoResult() *domain.BalanceResult {
	return &domain.BalanceResult{
		LobbyID: 1,
		Teams: []domain.BalanceResultTeam{
			{Index: 0, PlayerIDs: []int64{1, 2}},
			{Index: 1, PlayerIDs: []int64{3, 4}},
		},
	}
}

func demoPlayers() []*domain.Player {
	return []*domain.Player{
		{ID: 1, Nickname: "a"},
		{ID: 2, Nickname: "b"},
		{ID: 3, Nickname: "c"},
		{ID: 4, Nickname: "d"},
	}
}

func TestValidateBalanceResultWithLobby(t *testing.T) {
	lobby := &domain.Lobby{ID: 1, NumTeams: 2}
	require.NoError(t, ValidateBalanceResultWithLobby(demoResult(), lobby))

	lobby.NumTeams = 3
	assert.Error(t, ValidateBalanceResultWithLobby(demoResult(), lobby))

	lobby.NumTeams = 2
	res := demoResult()
	res.Teams[1].Index = 0
	assert.Error(t, ValidateBalanceResultWithLobby(res, lobby))

	res.Teams[1].Index = 5
	assert.Error(t, ValidateBalanceResultWithLobby(res, lobby))
}

func TestValidateBalanceResultWithPlayers(t *testing.T) {
	require.NoError(t, ValidateBalanceResultWithPlayers(demoResult(), demoPlayers()))

	// 有玩家没有被分配
	missing := append(demoPlayers(), &domain.Player{ID: 5, Nickname: "e"})
	assert.Error(t, ValidateBalanceResultWithPlayers(demoResult(), missing))

	// 分配了不在房间中的玩家
	res := demoResult()
	res.Teams[0].PlayerIDs = append(res.Teams[0].PlayerIDs, 9)
	assert.Error(t, ValidateBalanceResultWithPlayers(res, demoPlayers()))
}

func TestValidIfExistsDuplicatePlayer(t *testing.T) {
	require.NoError(t, ValidIfExistsDuplicatePlayer(demoResult()))

	res := demoResult()
	res.Teams[1].PlayerIDs = append(res.Teams[1].PlayerIDs, 1)
	assert.Error(t, ValidIfExistsDuplicatePlayer(res))

	res = demoResult()
	res.Teams[0].PlayerIDs = append(res.Teams[0].PlayerIDs, 2)
	assert.Error(t, ValidIfExistsDuplicatePlayer(res))
}

func TestValidateLobby(t *testing.T) {
	assert.NoError(t, ValidateLobby(&domain.Lobby{NumTeams: 2}))
	assert.Error(t, ValidateLobby(&domain.Lobby{NumTeams: 0}))
}
