package balancer

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// randomPool 生成一组带组队和公平性分数的随机玩家
func randomPool(seed int64, n int) []*domain.Player {
	rng := rand.New(rand.NewSource(seed))
	roles := DefaultRoleSchema().Roles

	players := make([]*domain.Player, 0, n)
	for i := 0; i < n; i++ {
		p := &domain.Player{
			ID:            int64(i + 1),
			Skill:         float64(1000 + rng.Intn(1500)),
			Role:          roles[rng.Intn(len(roles))],
			FairnessScore: rng.Float64(),
		}
		if rng.Intn(3) == 0 {
			p.PartyID = domain.PartyOf(int64(rng.Intn(4)))
		}
		players = append(players, p)
	}
	return players
}

func sortedIDs(p Partition) []int64 {
	ids := []int64{}
	for _, team := range p.PlayerIDs() {
		ids = append(ids, team...)
	}
	slices.Sort(ids)
	return ids
}

func poolIDs(players []*domain.Player) []int64 {
	ids := make([]int64, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	slices.Sort(ids)
	return ids
}

func newBalancer(t *testing.T, players []*domain.Player, iterations, numTeams int, seed int64) *Balancer {
	t.Helper()
	b, err := New(&Parameters{Iterations: iterations, NumTeams: numTeams, Seed: seed}, DefaultRoleSchema(), DefaultWeights(), players)
	require.NoError(t, err)
	return b
}

func TestOptimizeTeams_Scenario(t *testing.T) {
	res, err := OptimizeTeams(DemoPlayers(), DefaultIterations, DefaultNumTeams, DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, 105.0, res.InitialCost)
	assert.LessOrEqual(t, res.Cost, res.InitialCost)
	assert.LessOrEqual(t, res.Cost, 30.0)
	assert.False(t, res.Cancelled)
	assert.Equal(t, DefaultIterations, res.Iterations)

	// 1 号和 2 号组队，最终必须在同一支队伍
	var team1, team2 int
	for i, team := range res.Teams {
		for _, p := range team {
			switch p.ID {
			case 1:
				team1 = i
			case 2:
				team2 = i
			}
		}
	}
	assert.Equal(t, team1, team2)
	assert.Equal(t, 0.0, res.Breakdown.Party)
}

func TestBalance_Conservation(t *testing.T) {
	for _, numTeams := range []int{1, 2, 3, 5} {
		players := randomPool(int64(numTeams), 17)
		res := newBalancer(t, players, 2000, numTeams, 7).Balance(context.Background())

		require.Len(t, res.Teams, numTeams)
		assert.Equal(t, poolIDs(players), sortedIDs(res.Teams))
	}
}

func TestBalance_PreservesTeamSizes(t *testing.T) {
	players := randomPool(3, 11)
	initial, err := InitialAssign(players, 3)
	require.NoError(t, err)

	res := newBalancer(t, players, 3000, 3, 11).Balance(context.Background())
	for i := range initial {
		assert.Len(t, res.Teams[i], len(initial[i]))
	}
}

func TestBalance_Deterministic(t *testing.T) {
	players := randomPool(42, 20)

	first := newBalancer(t, players, 4000, 4, 99).Balance(context.Background())

	// 中间穿插一次不同种子的调用，不应影响后续结果
	_ = newBalancer(t, players, 500, 4, 1).Balance(context.Background())

	second := newBalancer(t, players, 4000, 4, 99).Balance(context.Background())

	assert.Equal(t, first.Teams.PlayerIDs(), second.Teams.PlayerIDs())
	assert.Equal(t, first.Cost, second.Cost)
	assert.Equal(t, first.Accepted, second.Accepted)
}

func TestBalance_MonotonicImprovement(t *testing.T) {
	players := randomPool(5, 15)
	model, err := NewCostModel(DefaultRoleSchema(), DefaultWeights())
	require.NoError(t, err)

	initial, err := InitialAssign(players, 3)
	require.NoError(t, err)
	initialCost := model.TotalCost(initial)

	prev := initialCost
	for _, iterations := range []int{0, 1, 10, 100, 1000, 5000} {
		res := newBalancer(t, players, iterations, 3, 2024).Balance(context.Background())
		assert.LessOrEqual(t, res.Cost, initialCost)
		assert.Equal(t, initialCost, res.InitialCost)
		// 同一个种子下，迭代次数越多代价不会变大
		assert.LessOrEqual(t, res.Cost, prev)
		prev = res.Cost
	}
}

func TestBalance_CostMatchesRecomputation(t *testing.T) {
	players := randomPool(8, 12)
	res := newBalancer(t, players, 2500, 2, 8).Balance(context.Background())

	model, err := NewCostModel(DefaultRoleSchema(), DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, model.TotalCost(res.Teams), res.Cost)
	assert.Equal(t, res.Cost, res.Breakdown.Total)
}

func TestBalance_ZeroIterations(t *testing.T) {
	players := DemoPlayers()
	initial, err := InitialAssign(players, 2)
	require.NoError(t, err)

	res := newBalancer(t, players, 0, 2, 42).Balance(context.Background())
	assert.Equal(t, initial.PlayerIDs(), res.Teams.PlayerIDs())
	assert.Equal(t, 105.0, res.Cost)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 0, res.Accepted)
}

func TestBalance_EmptyPool(t *testing.T) {
	res := newBalancer(t, nil, 100, 3, 42).Balance(context.Background())

	require.Len(t, res.Teams, 3)
	for _, team := range res.Teams {
		assert.Empty(t, team)
	}
	// 没有玩家时代价恒为 0，空队伍缺少的定位不产生惩罚
	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 0.0, res.InitialCost)
	assert.Equal(t, 0.0, res.Cost)
	assert.Equal(t, Breakdown{}, res.Breakdown)

	res2, err := OptimizeTeams(nil, 100, 2, 42)
	require.NoError(t, err)
	require.Len(t, res2.Teams, 2)
	assert.Equal(t, 0.0, res2.Cost)
	assert.Equal(t, 0.0, res2.Breakdown.Role)
}

func TestBalance_SingleTeam(t *testing.T) {
	players := DemoPlayers()
	res := newBalancer(t, players, 1000, 1, 42).Balance(context.Background())

	require.Len(t, res.Teams, 1)
	assert.Len(t, res.Teams[0], len(players))
	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, res.InitialCost, res.Cost)
}

func TestBalance_Cancelled(t *testing.T) {
	players := DemoPlayers()
	initial, err := InitialAssign(players, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newBalancer(t, players, 5000, 2, 42).Balance(ctx)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, initial.PlayerIDs(), res.Teams.PlayerIDs())
	assert.Equal(t, res.InitialCost, res.Cost)
}

func TestNew_InvalidConfiguration(t *testing.T) {
	schema := DefaultRoleSchema()
	weights := DefaultWeights()

	_, err := New(&Parameters{Iterations: 10, NumTeams: 0}, schema, weights, DemoPlayers())
	assert.ErrorIs(t, err, ErrInvalidTeamCount)

	_, err = New(&Parameters{Iterations: -1, NumTeams: 2}, schema, weights, DemoPlayers())
	assert.ErrorIs(t, err, ErrInvalidIterations)

	dup := append(DemoPlayers(), player(1, 1000, domain.RoleDuelist))
	_, err = New(&Parameters{Iterations: 10, NumTeams: 2}, schema, weights, dup)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)

	unknown := append(DemoPlayers(), player(11, 1000, "healer"))
	_, err = New(&Parameters{Iterations: 10, NumTeams: 2}, schema, weights, unknown)
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = New(&Parameters{Iterations: 10, NumTeams: 2}, schema, Weights{Fairness: -0.1}, DemoPlayers())
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestPickTwoTeams(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, _, ok := pickTwoTeams(rng, 1)
	assert.False(t, ok)

	counts := make(map[[2]int]int)
	for i := 0; i < 6000; i++ {
		t1, t2, ok := pickTwoTeams(rng, 3)
		require.True(t, ok)
		require.NotEqual(t, t1, t2)
		require.True(t, t1 >= 0 && t1 < 3 && t2 >= 0 && t2 < 3)
		counts[[2]int{t1, t2}]++
	}
	// 6 种有序组合都应该出现
	assert.Len(t, counts, 6)
}

func TestResult_ToBalanceResult(t *testing.T) {
	params := &Parameters{Iterations: 0, NumTeams: 2, Seed: 42}
	res, err := OptimizeTeams(DemoPlayers(), params.Iterations, params.NumTeams, params.Seed)
	require.NoError(t, err)

	br := res.ToBalanceResult(3, params)
	assert.Equal(t, int64(3), br.LobbyID)
	assert.Equal(t, int64(42), br.Seed)
	assert.Equal(t, 105.0, br.Cost)
	require.Len(t, br.Teams, 2)
	assert.Equal(t, []int64{5, 2, 7, 10, 4}, br.Teams[0].PlayerIDs)
	assert.Equal(t, 1720.0, br.Teams[0].AverageSkill)
	assert.Equal(t, 1670.0, br.Teams[1].AverageSkill)

	teams, err := PartitionFromResult(br, DemoPlayers())
	require.NoError(t, err)
	assert.Equal(t, res.Teams.PlayerIDs(), teams.PlayerIDs())

	_, err = PartitionFromResult(br, DemoPlayers()[:3])
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}
