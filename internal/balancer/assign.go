package balancer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// InitialAssign 按实力从高到低蛇形分配玩家：0,1,...,n-1,n-1,...,0,0,1,...
// 实力相同的玩家保持输入顺序，保证结果可复现；不考虑定位和组队
func InitialAssign(players []*domain.Player, numTeams int) (Partition, error) {
	if numTeams <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeamCount, numTeams)
	}

	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b *domain.Player) int {
		return cmp.Compare(b.Skill, a.Skill)
	})

	teams := make(Partition, numTeams)
	for i := range teams {
		teams[i] = Team{}
	}

	idx := 0
	direction := 1
	for _, p := range sorted {
		teams[idx] = append(teams[idx], p)
		idx += direction

		if idx == numTeams {
			idx = numTeams - 1
			direction = -1
		} else if idx < 0 {
			idx = 0
			direction = 1
		}
	}

	return teams, nil
}
