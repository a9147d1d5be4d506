package balancer

import (
	"errors"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

var (
	ErrInvalidTeamCount  = errors.New("队伍数量必须为正数")
	ErrInvalidIterations = errors.New("迭代次数不能为负数")
	ErrInvalidWeight     = errors.New("权重必须为非负的有限数")
	ErrInvalidRoleRange  = errors.New("定位人数范围非法")
	ErrDuplicateRole     = errors.New("定位重复")
	ErrEmptyRole         = errors.New("定位名称不能为空")
	ErrUnknownRole       = domain.ErrUnknownRole
	ErrDuplicatePlayer   = errors.New("玩家 ID 重复")
	ErrInvalidPlayer     = errors.New("玩家数据非法")
)
