package balancer

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// RoleRange: 每支队伍中某个定位的人数范围（闭区间）
type RoleRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RoleSchema 描述一个游戏的定位集合以及每支队伍对各定位的人数要求
// Roles 中存在但 Requirements 中没有的定位不会产生任何惩罚
type RoleSchema struct {
	Roles        []domain.Role
	Requirements map[domain.Role]RoleRange
}

// DefaultRoleSchema 返回 5v5 射击游戏的定位要求
func DefaultRoleSchema() *RoleSchema {
	return &RoleSchema{
		Roles: []domain.Role{
			domain.RoleDuelist,
			domain.RoleController,
			domain.RoleInitiator,
			domain.RoleSentinel,
		},
		Requirements: map[domain.Role]RoleRange{
			domain.RoleDuelist:    {Min: 1, Max: 2},
			domain.RoleController: {Min: 1, Max: 1},
			domain.RoleInitiator:  {Min: 1, Max: 2},
			domain.RoleSentinel:   {Min: 1, Max: 2},
		},
	}
}

func (s *RoleSchema) Validate() error {
	seen := make(map[domain.Role]bool, len(s.Roles))
	for _, role := range s.Roles {
		if role == "" {
			return ErrEmptyRole
		}
		if seen[role] {
			return fmt.Errorf("%w: %q", ErrDuplicateRole, role)
		}
		seen[role] = true
	}

	for role, rr := range s.Requirements {
		if !seen[role] {
			return fmt.Errorf("%w: 人数要求中的定位 %q 不在定位集合中", ErrUnknownRole, role)
		}
		if rr.Min < 0 || rr.Min > rr.Max {
			return fmt.Errorf("%w: 定位 %q 的范围为 [%d, %d]", ErrInvalidRoleRange, role, rr.Min, rr.Max)
		}
	}

	return nil
}

func (s *RoleSchema) Contains(role domain.Role) bool {
	return slices.Contains(s.Roles, role)
}

// WithRequirements 返回一个新的 RoleSchema，overrides 中的定位会覆盖原有的人数要求
func (s *RoleSchema) WithRequirements(overrides map[domain.Role]RoleRange) (*RoleSchema, error) {
	schema := &RoleSchema{
		Roles:        slices.Clone(s.Roles),
		Requirements: maps.Clone(s.Requirements),
	}
	if schema.Requirements == nil {
		schema.Requirements = make(map[domain.Role]RoleRange, len(overrides))
	}
	for role, rr := range overrides {
		schema.Requirements[role] = rr
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return schema, nil
}

// ParseRoleSchema 从配置中解析定位表，requirements 的值格式为 "min-max"，例如 "1-2"
func ParseRoleSchema(roles []string, requirements map[string]string) (*RoleSchema, error) {
	schema := &RoleSchema{
		Roles:        make([]domain.Role, 0, len(roles)),
		Requirements: make(map[domain.Role]RoleRange, len(requirements)),
	}

	for _, role := range roles {
		schema.Roles = append(schema.Roles, domain.Role(strings.TrimSpace(role)))
	}

	for role, value := range requirements {
		minStr, maxStr, ok := strings.Cut(value, "-")
		if !ok {
			return nil, fmt.Errorf("%w: 定位 %q 的范围 %q 格式应为 min-max", ErrInvalidRoleRange, role, value)
		}
		minCount, err := strconv.Atoi(strings.TrimSpace(minStr))
		if err != nil {
			return nil, fmt.Errorf("%w: 定位 %q 的最小人数 %q", ErrInvalidRoleRange, role, minStr)
		}
		maxCount, err := strconv.Atoi(strings.TrimSpace(maxStr))
		if err != nil {
			return nil, fmt.Errorf("%w: 定位 %q 的最大人数 %q", ErrInvalidRoleRange, role, maxStr)
		}
		schema.Requirements[domain.Role(strings.TrimSpace(role))] = RoleRange{Min: minCount, Max: maxCount}
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return schema, nil
}
