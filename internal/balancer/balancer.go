package balancer

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

type Balancer struct {
	parameters *Parameters
	model      *CostModel
	players    []*domain.Player
}

// New 在搜索开始之前完成所有的校验，搜索过程本身不会再出错
func New(parameters *Parameters, schema *RoleSchema, weights Weights, players []*domain.Player) (*Balancer, error) {
	if parameters.NumTeams <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeamCount, parameters.NumTeams)
	}
	if parameters.Iterations < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, parameters.Iterations)
	}

	model, err := NewCostModel(schema, weights)
	if err != nil {
		return nil, err
	}

	if err := ValidatePlayers(players, schema); err != nil {
		return nil, err
	}

	return &Balancer{
		parameters: parameters,
		model:      model,
		players:    players,
	}, nil
}

/**
 * 爬山法局部搜索
 * 每次随机选两支不同的队伍，各随机选一名玩家交换，从头计算代价：
 * 		1. 新代价 <= 当前代价：接受（允许在代价相同的状态之间平移）
 * 		2. 否则：换回去
 * 当前状态永远不会变差，因此当前状态即为搜索过程中见过的最优状态
 */
func (b *Balancer) Balance(ctx context.Context) *Result {
	// 每次调用都使用独立的随机数生成器，不依赖全局状态
	rng := rand.New(rand.NewSource(b.parameters.Seed))

	teams, _ := InitialAssign(b.players, b.parameters.NumTeams) // 队伍数量已经在 New 中校验过
	currentCost := b.model.TotalCost(teams)

	res := &Result{
		InitialCost: currentCost,
	}

	for it := 0; it < b.parameters.Iterations; it++ {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		res.Iterations++

		t1, t2, ok := pickTwoTeams(rng, len(teams))
		if !ok {
			continue
		}
		if len(teams[t1]) == 0 || len(teams[t2]) == 0 {
			continue
		}

		i := rng.Intn(len(teams[t1]))
		j := rng.Intn(len(teams[t2]))

		teams[t1][i], teams[t2][j] = teams[t2][j], teams[t1][i]

		trialCost := b.model.TotalCost(teams)
		if trialCost <= currentCost {
			currentCost = trialCost
			res.Accepted++
		} else {
			teams[t1][i], teams[t2][j] = teams[t2][j], teams[t1][i]
		}
	}

	res.Teams = teams
	res.Cost = currentCost
	res.Breakdown = b.model.Breakdown(teams)

	return res
}

// OptimizeTeams 使用默认的定位表和权重进行分队
func OptimizeTeams(players []*domain.Player, iterations int, numTeams int, seed int64) (*Result, error) {
	b, err := New(&Parameters{
		Iterations: iterations,
		NumTeams:   numTeams,
		Seed:       seed,
	}, DefaultRoleSchema(), DefaultWeights(), players)
	if err != nil {
		return nil, err
	}

	return b.Balance(context.Background()), nil
}
