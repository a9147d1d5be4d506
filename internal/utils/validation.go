package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func ValidateLobby(lobby *domain.Lobby) error {
	if lobby.NumTeams <= 0 {
		return fmt.Errorf("队伍数量必须为正数")
	}

	return nil
}

// ValidateBalanceResultWithLobby 检查分队结果的队伍数量和队伍编号是否和房间对的上
func ValidateBalanceResultWithLobby(result *domain.BalanceResult, lobby *domain.Lobby) error {
	if len(result.Teams) != int(lobby.NumTeams) {
		return fmt.Errorf("队伍数量应为 %d，实际为 %d", lobby.NumTeams, len(result.Teams))
	}

	seen := make(map[int32]bool, len(result.Teams))
	for _, team := range result.Teams {
		if team.Index < 0 || team.Index >= lobby.NumTeams {
			return fmt.Errorf("队伍编号 %d 超出范围", team.Index)
		}
		if seen[team.Index] {
			return fmt.Errorf("队伍编号 %d 重复", team.Index)
		}
		seen[team.Index] = true
	}

	return nil
}

// ValidateBalanceResultWithPlayers 检查房间中的每个玩家都恰好出现在一支队伍中
func ValidateBalanceResultWithPlayers(result *domain.BalanceResult, players []*domain.Player) error {
	assigned := make(map[int64]bool)
	for _, team := range result.Teams {
		for _, id := range team.PlayerIDs {
			assigned[id] = true
		}
	}

	inLobby := make(map[int64]bool, len(players))
	for _, p := range players {
		inLobby[p.ID] = true
		if !assigned[p.ID] {
			return fmt.Errorf("玩家 %s 没有被分配到任何队伍", p.Nickname)
		}
	}

	for id := range assigned {
		if !inLobby[id] {
			return fmt.Errorf("玩家 %d 不在该房间中", id)
		}
	}

	return nil
}

func ValidIfExistsDuplicatePlayer(result *domain.BalanceResult) error {
	seen := make(map[int64]int32)
	for _, team := range result.Teams {
		for _, id := range team.PlayerIDs {
			if prev, exists := seen[id]; exists {
				if prev == team.Index {
					return fmt.Errorf("玩家 %d 在队伍 %d 中重复出现", id, team.Index)
				}
				return fmt.Errorf("玩家 %d 同时出现在队伍 %d 和队伍 %d 中", id, prev, team.Index)
			}
			seen[id] = team.Index
		}
	}

	return nil
}

var ErrEmptyNickname = errors.New("玩家昵称不能为空")

func ValidatePlayerNickname(p *domain.Player) error {
	if p.Nickname == "" {
		return ErrEmptyNickname
	}
	return nil
}
