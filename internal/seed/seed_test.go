package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func TestParsePlayersCSV(t *testing.T) {
	input := `nickname,email,skill,role,party_id,fairness_score
alice,alice@example.com,1900,duelist,1,
bob,,1750,initiator,1,0.5
carol,,1600,sentinel,,
`
	players, err := ParsePlayersCSV(strings.NewReader(input), balancer.DefaultRoleSchema())
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, "alice", players[0].Nickname)
	assert.Equal(t, "alice@example.com", players[0].Email)
	assert.Equal(t, 1900.0, players[0].Skill)
	assert.Equal(t, domain.RoleDuelist, players[0].Role)
	require.NotNil(t, players[0].PartyID)
	assert.Equal(t, int64(1), *players[0].PartyID)

	assert.Equal(t, 0.5, players[1].FairnessScore)
	assert.False(t, players[2].InParty())
}

func TestParsePlayersCSVColumnOrder(t *testing.T) {
	input := "Role, Skill, Nickname\ncontroller, 1500, dave\n"
	players, err := ParsePlayersCSV(strings.NewReader(input), balancer.DefaultRoleSchema())
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "dave", players[0].Nickname)
	assert.Equal(t, domain.RoleController, players[0].Role)
	assert.Empty(t, players[0].Email)
}

func TestParsePlayersCSVErrors(t *testing.T) {
	schema := balancer.DefaultRoleSchema()

	tests := []struct {
		name  string
		input string
	}{
		{"缺少列", "nickname,skill\nalice,1900\n"},
		{"实力值无效", "nickname,skill,role\nalice,abc,duelist\n"},
		{"未知定位", "nickname,skill,role\nalice,1900,healer\n"},
		{"组队ID无效", "nickname,skill,role,party_id\nalice,1900,duelist,x\n"},
		{"昵称为空", "nickname,skill,role\n,1900,duelist\n"},
		{"空文件", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlayersCSV(strings.NewReader(tt.input), schema)
			assert.Error(t, err)
		})
	}

	_, err := ParsePlayersCSV(strings.NewReader("nickname,skill\nalice,1900\n"), schema)
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = ParsePlayersCSV(strings.NewReader("nickname,skill,role\nalice,1900,healer\n"), schema)
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}
