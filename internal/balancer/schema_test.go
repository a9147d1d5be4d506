package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func TestRoleSchema_Validate(t *testing.T) {
	require.NoError(t, DefaultRoleSchema().Validate())

	tests := []struct {
		name   string
		schema *RoleSchema
		err    error
	}{
		{
			name:   "empty role",
			schema: &RoleSchema{Roles: []domain.Role{""}},
			err:    ErrEmptyRole,
		},
		{
			name:   "duplicate role",
			schema: &RoleSchema{Roles: []domain.Role{"tank", "tank"}},
			err:    ErrDuplicateRole,
		},
		{
			name: "requirement for undeclared role",
			schema: &RoleSchema{
				Roles:        []domain.Role{"tank"},
				Requirements: map[domain.Role]RoleRange{"healer": {Min: 1, Max: 1}},
			},
			err: ErrUnknownRole,
		},
		{
			name: "min greater than max",
			schema: &RoleSchema{
				Roles:        []domain.Role{"tank"},
				Requirements: map[domain.Role]RoleRange{"tank": {Min: 2, Max: 1}},
			},
			err: ErrInvalidRoleRange,
		},
		{
			name: "negative min",
			schema: &RoleSchema{
				Roles:        []domain.Role{"tank"},
				Requirements: map[domain.Role]RoleRange{"tank": {Min: -1, Max: 1}},
			},
			err: ErrInvalidRoleRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.schema.Validate(), tt.err)
		})
	}
}

func TestParseRoleSchema(t *testing.T) {
	schema, err := ParseRoleSchema(
		[]string{"tank", " healer ", "dps"},
		map[string]string{"tank": "1-1", "healer": "1 - 2", "dps": "2-3"},
	)
	require.NoError(t, err)

	assert.Equal(t, []domain.Role{"tank", "healer", "dps"}, schema.Roles)
	assert.Equal(t, RoleRange{Min: 1, Max: 2}, schema.Requirements["healer"])
	assert.Equal(t, RoleRange{Min: 2, Max: 3}, schema.Requirements["dps"])

	_, err = ParseRoleSchema([]string{"tank"}, map[string]string{"tank": "1"})
	assert.ErrorIs(t, err, ErrInvalidRoleRange)

	_, err = ParseRoleSchema([]string{"tank"}, map[string]string{"tank": "a-1"})
	assert.ErrorIs(t, err, ErrInvalidRoleRange)

	_, err = ParseRoleSchema([]string{"tank"}, map[string]string{"tank": "3-1"})
	assert.ErrorIs(t, err, ErrInvalidRoleRange)
}

func TestRoleSchema_WithRequirements(t *testing.T) {
	base := DefaultRoleSchema()

	schema, err := base.WithRequirements(map[domain.Role]RoleRange{domain.RoleController: {Min: 1, Max: 2}})
	require.NoError(t, err)
	assert.Equal(t, RoleRange{Min: 1, Max: 2}, schema.Requirements[domain.RoleController])
	// 原来的定位表不受影响
	assert.Equal(t, RoleRange{Min: 1, Max: 1}, base.Requirements[domain.RoleController])

	_, err = base.WithRequirements(map[domain.Role]RoleRange{"healer": {Min: 0, Max: 1}})
	assert.ErrorIs(t, err, ErrUnknownRole)
}
