package balancer

import "github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"

// Team: 一支队伍，只保存玩家的引用，玩家本身不知道自己属于哪支队伍
type Team []*domain.Player

// Partition: 整个分队方案，长度恒等于队伍数
type Partition []Team

// 代价函数中各项惩罚的权重
type Weights struct {
	SkillImbalance float64 // 实力差距权重
	Role           float64 // 定位惩罚权重
	Party          float64 // 拆散组队惩罚权重
	Fairness       float64 // 公平性惩罚权重
}

// 局部搜索参数
type Parameters struct {
	Iterations int   // 迭代次数
	NumTeams   int   // 队伍数量
	Seed       int64 // 随机种子，相同的种子必须得到相同的结果
}

// 代价的各个组成部分，均为未加权的原始值，Total 为加权后的总代价
type Breakdown struct {
	SkillImbalance float64 `json:"skillImbalance"`
	Role           float64 `json:"role"`
	Party          float64 `json:"party"`
	Fairness       float64 `json:"fairness"`
	Total          float64 `json:"total"`
}

type Result struct {
	Teams       Partition
	Cost        float64
	Breakdown   Breakdown
	InitialCost float64
	Iterations  int  // 实际执行的迭代次数，被取消时可能小于参数中的迭代次数
	Accepted    int  // 被接受的交换次数
	Cancelled   bool // 是否因为 ctx 被取消而提前结束
}

const (
	DefaultIterations = 5000
	DefaultNumTeams   = 2
	DefaultSeed       = 42
)

func DefaultParameters() Parameters {
	return Parameters{
		Iterations: DefaultIterations,
		NumTeams:   DefaultNumTeams,
		Seed:       DefaultSeed,
	}
}

func DefaultWeights() Weights {
	return Weights{
		SkillImbalance: 1.0,
		Role:           1.0,
		Party:          1.0,
		Fairness:       0.7,
	}
}
