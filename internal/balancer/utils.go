package balancer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// pickTwoTeams 从 [0, n) 中均匀地选出两个不同的下标，n < 2 时不消耗随机数
func pickTwoTeams(rng *rand.Rand, n int) (int, int, bool) {
	if n < 2 {
		return 0, 0, false
	}
	t1 := rng.Intn(n)
	t2 := rng.Intn(n - 1)
	if t2 >= t1 {
		t2++
	}
	return t1, t2, true
}

// ValidatePlayers 检查玩家 ID 是否重复、定位是否在定位集合中、数值是否合法
func ValidatePlayers(players []*domain.Player, schema *RoleSchema) error {
	seen := make(map[int64]bool, len(players))
	for _, p := range players {
		if p == nil {
			return fmt.Errorf("%w: 玩家不能为空", ErrInvalidPlayer)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = true

		if !schema.Contains(p.Role) {
			return fmt.Errorf("%w: 玩家 %d 的定位 %q", ErrUnknownRole, p.ID, p.Role)
		}
		if math.IsNaN(p.Skill) || math.IsInf(p.Skill, 0) {
			return fmt.Errorf("%w: 玩家 %d 的实力值 %v", ErrInvalidPlayer, p.ID, p.Skill)
		}
		if math.IsNaN(p.FairnessScore) || math.IsInf(p.FairnessScore, 0) {
			return fmt.Errorf("%w: 玩家 %d 的公平性分数 %v", ErrInvalidPlayer, p.ID, p.FairnessScore)
		}
	}
	return nil
}

// Size 返回所有队伍的玩家总数
func (p Partition) Size() int {
	n := 0
	for _, team := range p {
		n += len(team)
	}
	return n
}

// PlayerIDs 返回每支队伍的玩家 ID，便于比较和序列化
func (p Partition) PlayerIDs() [][]int64 {
	ids := make([][]int64, len(p))
	for i, team := range p {
		ids[i] = make([]int64, 0, len(team))
		for _, player := range team {
			ids[i] = append(ids[i], player.ID)
		}
	}
	return ids
}

// ToBalanceResult 将搜索结果转换成可以持久化、返回给前端的结构
func (r *Result) ToBalanceResult(lobbyID int64, parameters *Parameters) *domain.BalanceResult {
	avgSkill := AverageSkills(r.Teams)
	ids := r.Teams.PlayerIDs()

	result := &domain.BalanceResult{
		LobbyID:    lobbyID,
		Seed:       parameters.Seed,
		Iterations: int32(parameters.Iterations),
		Cost:       r.Cost,
		Teams:      make([]domain.BalanceResultTeam, len(r.Teams)),
	}
	for i := range r.Teams {
		result.Teams[i] = domain.BalanceResultTeam{
			Index:        int32(i),
			PlayerIDs:    ids[i],
			AverageSkill: avgSkill[i],
		}
	}

	return result
}

// PartitionFromResult 根据保存的分队结果重建分队方案，players 中必须包含结果里的所有玩家
func PartitionFromResult(result *domain.BalanceResult, players []*domain.Player) (Partition, error) {
	byID := make(map[int64]*domain.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	teams := make(Partition, len(result.Teams))
	for i, team := range result.Teams {
		teams[i] = make(Team, 0, len(team.PlayerIDs))
		for _, id := range team.PlayerIDs {
			p, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: 玩家 %d 不存在", ErrInvalidPlayer, id)
			}
			teams[i] = append(teams[i], p)
		}
	}

	return teams, nil
}
