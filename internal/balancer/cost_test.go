package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func player(id int64, skill float64, role domain.Role) *domain.Player {
	return &domain.Player{ID: id, Skill: skill, Role: role}
}

func partied(p *domain.Player, party int64) *domain.Player {
	p.PartyID = domain.PartyOf(party)
	return p
}

func fullTeam(startID int64, skill float64) Team {
	return Team{
		player(startID, skill, domain.RoleDuelist),
		player(startID+1, skill, domain.RoleController),
		player(startID+2, skill, domain.RoleInitiator),
		player(startID+3, skill, domain.RoleSentinel),
	}
}

func TestSkillImbalance(t *testing.T) {
	assert.Equal(t, 0.0, SkillImbalance(nil))
	assert.Equal(t, 0.0, SkillImbalance([]float64{1500, 1500, 1500}))
	assert.Equal(t, 300.0, SkillImbalance([]float64{1500, 1800, 1600}))

	// 空队伍的平均实力记为 0
	p := Partition{fullTeam(1, 1500), Team{}}
	assert.Equal(t, []float64{1500, 0}, AverageSkills(p))
	assert.Equal(t, 1500.0, SkillImbalance(AverageSkills(p)))
}

func TestRolePenalty(t *testing.T) {
	schema := DefaultRoleSchema()

	t.Run("within range", func(t *testing.T) {
		team := append(fullTeam(1, 1000), player(5, 1000, domain.RoleDuelist))
		assert.Equal(t, 0.0, RolePenalty(Partition{team, fullTeam(10, 1000)}, schema))
	})

	t.Run("missing roles", func(t *testing.T) {
		p := Partition{{player(1, 1000, domain.RoleDuelist)}}
		assert.Equal(t, 60.0, RolePenalty(p, schema))
	})

	t.Run("surplus roles", func(t *testing.T) {
		team := append(fullTeam(1, 1000),
			player(5, 1000, domain.RoleController),
			player(6, 1000, domain.RoleController),
		)
		assert.Equal(t, 20.0, RolePenalty(Partition{team}, schema))
	})

	t.Run("missing is twice as bad as surplus", func(t *testing.T) {
		missing := Partition{{
			player(1, 1000, domain.RoleDuelist),
			player(2, 1000, domain.RoleInitiator),
			player(3, 1000, domain.RoleSentinel),
		}}
		surplus := Partition{append(fullTeam(1, 1000), player(5, 1000, domain.RoleController))}
		assert.Equal(t, 2*RolePenalty(surplus, schema), RolePenalty(missing, schema))
	})

	t.Run("empty team misses every required role", func(t *testing.T) {
		assert.Equal(t, 80.0, RolePenalty(Partition{Team{}}, schema))
	})

	t.Run("role without requirement", func(t *testing.T) {
		custom := &RoleSchema{
			Roles:        []domain.Role{"tank", "flex"},
			Requirements: map[domain.Role]RoleRange{"tank": {Min: 1, Max: 1}},
		}
		p := Partition{{player(1, 1000, "tank"), player(2, 1000, "flex"), player(3, 1000, "flex")}}
		assert.Equal(t, 0.0, RolePenalty(p, custom))
	})
}

func TestPartyPenalty(t *testing.T) {
	t.Run("no party", func(t *testing.T) {
		assert.Equal(t, 0.0, PartyPenalty(Partition{fullTeam(1, 1000), fullTeam(10, 1000)}))
	})

	t.Run("party together", func(t *testing.T) {
		p := Partition{
			{partied(player(1, 1000, domain.RoleDuelist), 7), partied(player(2, 1000, domain.RoleSentinel), 7)},
			{player(3, 1000, domain.RoleDuelist)},
		}
		assert.Equal(t, 0.0, PartyPenalty(p))
	})

	t.Run("independent of party size", func(t *testing.T) {
		small := Partition{
			{partied(player(1, 1000, domain.RoleDuelist), 1)},
			{partied(player(2, 1000, domain.RoleDuelist), 1)},
			{partied(player(3, 1000, domain.RoleDuelist), 1)},
		}
		large := Partition{
			{partied(player(1, 1000, domain.RoleDuelist), 1), partied(player(4, 1000, domain.RoleDuelist), 1)},
			{partied(player(2, 1000, domain.RoleDuelist), 1), partied(player(5, 1000, domain.RoleDuelist), 1)},
			{partied(player(3, 1000, domain.RoleDuelist), 1), partied(player(6, 1000, domain.RoleDuelist), 1)},
		}
		assert.Equal(t, 50.0, PartyPenalty(small))
		assert.Equal(t, 50.0, PartyPenalty(large))
	})

	t.Run("party zero is a real party", func(t *testing.T) {
		p := Partition{
			{partied(player(1, 1000, domain.RoleDuelist), 0), player(2, 1000, domain.RoleDuelist)},
			{partied(player(3, 1000, domain.RoleDuelist), 0), player(4, 1000, domain.RoleDuelist)},
		}
		assert.Equal(t, 25.0, PartyPenalty(p))
	})

	t.Run("several parties", func(t *testing.T) {
		p := Partition{
			{partied(player(1, 1000, domain.RoleDuelist), 1), partied(player(2, 1000, domain.RoleDuelist), 2)},
			{partied(player(3, 1000, domain.RoleDuelist), 1), partied(player(4, 1000, domain.RoleDuelist), 2)},
			{partied(player(5, 1000, domain.RoleDuelist), 1), partied(player(6, 1000, domain.RoleDuelist), 3)},
		}
		assert.Equal(t, 75.0, PartyPenalty(p))
	})
}

func TestFairnessPenalty(t *testing.T) {
	a := player(1, 100, domain.RoleDuelist)
	a.FairnessScore = 1
	b := player(2, 200, domain.RoleDuelist)
	b.FairnessScore = 2
	p := Partition{{a}, {b}}

	assert.Equal(t, 150.0, FairnessPenalty(p, AverageSkills(p)))
	assert.Equal(t, 0.0, FairnessPenalty(nil, nil))

	// 公平性分数为 0 时不产生惩罚
	a.FairnessScore, b.FairnessScore = 0, 0
	assert.Equal(t, 0.0, FairnessPenalty(p, AverageSkills(p)))
}

func TestCostModel_Breakdown(t *testing.T) {
	model, err := NewCostModel(DefaultRoleSchema(), DefaultWeights())
	require.NoError(t, err)

	teams, err := InitialAssign(DemoPlayers(), 2)
	require.NoError(t, err)

	b := model.Breakdown(teams)
	assert.Equal(t, 50.0, b.SkillImbalance)
	assert.Equal(t, 30.0, b.Role)
	assert.Equal(t, 25.0, b.Party)
	assert.Equal(t, 0.0, b.Fairness)
	assert.Equal(t, 105.0, b.Total)
	assert.Equal(t, b.Total, model.TotalCost(teams))
}

func TestCostModel_NoPlayers(t *testing.T) {
	model, err := NewCostModel(DefaultRoleSchema(), DefaultWeights())
	require.NoError(t, err)

	assert.Equal(t, Breakdown{}, model.Breakdown(Partition{Team{}, Team{}}))
	assert.Equal(t, 0.0, model.TotalCost(Partition{Team{}, Team{}}))
	assert.Equal(t, 0.0, model.TotalCost(nil))

	// 只要有一名玩家，空队伍的定位惩罚照常计算
	p := Partition{fullTeam(1, 1500), Team{}}
	assert.Equal(t, 80.0, model.Breakdown(p).Role)
}

func TestCostModel_Weights(t *testing.T) {
	a := player(1, 100, domain.RoleDuelist)
	a.FairnessScore = 1
	b := player(2, 200, domain.RoleDuelist)
	b.FairnessScore = 1
	p := Partition{{a}, {b}}

	model, err := NewCostModel(DefaultRoleSchema(), Weights{SkillImbalance: 2, Fairness: 0.5})
	require.NoError(t, err)

	breakdown := model.Breakdown(p)
	assert.Equal(t, 100.0, breakdown.SkillImbalance)
	assert.Equal(t, 100.0, breakdown.Fairness)
	assert.Equal(t, 120.0, breakdown.Role)
	assert.Equal(t, 250.0, breakdown.Total)
}

func TestNewCostModel_InvalidConfiguration(t *testing.T) {
	_, err := NewCostModel(DefaultRoleSchema(), Weights{Role: -1})
	assert.ErrorIs(t, err, ErrInvalidWeight)

	bad := DefaultRoleSchema()
	bad.Requirements[domain.RoleDuelist] = RoleRange{Min: 3, Max: 1}
	_, err = NewCostModel(bad, DefaultWeights())
	assert.ErrorIs(t, err, ErrInvalidRoleRange)
}
