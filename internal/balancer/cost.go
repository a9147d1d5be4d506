package balancer

import (
	"fmt"
	"math"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

const (
	missingRolePenalty = 20.0 // 每缺少一个必需定位的惩罚
	surplusRolePenalty = 10.0 // 每多出一个定位的惩罚
	splitPartyPenalty  = 25.0 // 组队每被多拆到一支队伍的惩罚
)

// CostModel 根据分队方案计算代价，越小越好，本身没有任何状态
type CostModel struct {
	schema  *RoleSchema
	weights Weights
}

func NewCostModel(schema *RoleSchema, weights Weights) (*CostModel, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if err := validateWeights(weights); err != nil {
		return nil, err
	}

	return &CostModel{
		schema:  schema,
		weights: weights,
	}, nil
}

func validateWeights(w Weights) error {
	named := []struct {
		name  string
		value float64
	}{
		{"skill imbalance", w.SkillImbalance},
		{"role", w.Role},
		{"party", w.Party},
		{"fairness", w.Fairness},
	}
	for _, n := range named {
		if n.value < 0 || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidWeight, n.name, n.value)
		}
	}
	return nil
}

// TotalCost 每次都从头计算整个分队方案的代价，不做增量计算
func (m *CostModel) TotalCost(p Partition) float64 {
	return m.Breakdown(p).Total
}

// Breakdown 在没有任何玩家时直接返回 0，空队伍缺少的定位不计入惩罚
func (m *CostModel) Breakdown(p Partition) Breakdown {
	if p.Size() == 0 {
		return Breakdown{}
	}

	avgSkill := AverageSkills(p)

	b := Breakdown{
		SkillImbalance: SkillImbalance(avgSkill),
		Role:           RolePenalty(p, m.schema),
		Party:          PartyPenalty(p),
		Fairness:       FairnessPenalty(p, avgSkill),
	}
	b.Total = b.SkillImbalance*m.weights.SkillImbalance +
		b.Role*m.weights.Role +
		b.Party*m.weights.Party +
		b.Fairness*m.weights.Fairness

	return b
}

// AverageSkills 计算每支队伍的平均实力，空队伍记为 0
func AverageSkills(p Partition) []float64 {
	avgSkill := make([]float64, len(p))
	for i, team := range p {
		if len(team) == 0 {
			continue
		}
		sum := 0.0
		for _, player := range team {
			sum += player.Skill
		}
		avgSkill[i] = sum / float64(len(team))
	}
	return avgSkill
}

// SkillImbalance = 最强队伍平均实力 - 最弱队伍平均实力
func SkillImbalance(avgSkill []float64) float64 {
	if len(avgSkill) == 0 {
		return 0
	}
	hi, lo := avgSkill[0], avgSkill[0]
	for _, v := range avgSkill[1:] {
		hi = max(hi, v)
		lo = min(lo, v)
	}
	return hi - lo
}

// RolePenalty 对每支队伍、每个有人数要求的定位计算惩罚
// 缺人的惩罚是多人的两倍，缺少必需定位比稍微多一个要严重
func RolePenalty(p Partition, schema *RoleSchema) float64 {
	penalty := 0.0

	for _, team := range p {
		counts := make(map[domain.Role]int)
		for _, player := range team {
			counts[player.Role]++
		}

		// 按 schema.Roles 的顺序遍历，保证浮点数求和的顺序是固定的
		for _, role := range schema.Roles {
			rr, ok := schema.Requirements[role]
			if !ok {
				continue
			}
			have := counts[role]
			if have < rr.Min {
				penalty += float64(rr.Min-have) * missingRolePenalty
			}
			if have > rr.Max {
				penalty += float64(have-rr.Max) * surplusRolePenalty
			}
		}
	}

	return penalty
}

// PartyPenalty: 一个组队分布在 k 支队伍中，惩罚为 (k-1)*25，与组队人数无关
func PartyPenalty(p Partition) float64 {
	order := []int64{}
	partyTeams := make(map[int64]map[int]struct{})

	for teamIdx, team := range p {
		for _, player := range team {
			if player.PartyID == nil {
				continue
			}
			pid := *player.PartyID
			if _, exists := partyTeams[pid]; !exists {
				partyTeams[pid] = make(map[int]struct{})
				order = append(order, pid)
			}
			partyTeams[pid][teamIdx] = struct{}{}
		}
	}

	penalty := 0.0
	for _, pid := range order {
		if k := len(partyTeams[pid]); k > 1 {
			penalty += float64(k-1) * splitPartyPenalty
		}
	}

	return penalty
}

// FairnessPenalty: 队伍平均实力偏离各队平均值越远，队中公平性分数越高的玩家带来的惩罚越大
func FairnessPenalty(p Partition, avgSkill []float64) float64 {
	if len(avgSkill) == 0 {
		return 0
	}

	overall := 0.0
	for _, v := range avgSkill {
		overall += v
	}
	overall /= float64(len(avgSkill))

	penalty := 0.0
	for teamIdx, team := range p {
		diff := avgSkill[teamIdx] - overall
		for _, player := range team {
			penalty += math.Abs(player.FairnessScore * diff)
		}
	}

	return penalty
}
