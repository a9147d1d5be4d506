package balancer

import "github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"

// DemoPlayers 返回一组 10 人的示例玩家，其中 1 号和 2 号组队
func DemoPlayers() []*domain.Player {
	party := domain.PartyOf(1)
	return []*domain.Player{
		{ID: 1, Nickname: "player1", Skill: 1900, Role: domain.RoleDuelist, PartyID: party},
		{ID: 2, Nickname: "player2", Skill: 1750, Role: domain.RoleInitiator, PartyID: party},
		{ID: 3, Nickname: "player3", Skill: 1600, Role: domain.RoleSentinel},
		{ID: 4, Nickname: "player4", Skill: 1500, Role: domain.RoleController},
		{ID: 5, Nickname: "player5", Skill: 2100, Role: domain.RoleDuelist},
		{ID: 6, Nickname: "player6", Skill: 1800, Role: domain.RoleDuelist},
		{ID: 7, Nickname: "player7", Skill: 1700, Role: domain.RoleController},
		{ID: 8, Nickname: "player8", Skill: 1650, Role: domain.RoleInitiator},
		{ID: 9, Nickname: "player9", Skill: 1400, Role: domain.RoleSentinel},
		{ID: 10, Nickname: "player10", Skill: 1550, Role: domain.RoleSentinel},
	}
}
