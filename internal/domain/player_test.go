package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayer(t *testing.T) {
	roles := []Role{RoleDuelist, RoleSentinel}

	party := PartyOf(0)
	p, err := NewPlayer(1, 1800, RoleDuelist, party, 0.5, roles)
	require.NoError(t, err)
	assert.True(t, p.InParty())
	assert.Equal(t, int64(0), *p.PartyID)

	// 修改传入的指针不影响已创建的玩家
	*party = 9
	assert.Equal(t, int64(0), *p.PartyID)

	solo, err := NewPlayer(2, 1500, RoleSentinel, nil, 0, roles)
	require.NoError(t, err)
	assert.False(t, solo.InParty())

	_, err = NewPlayer(3, 1500, RoleController, nil, 0, roles)
	assert.ErrorIs(t, err, ErrUnknownRole)
}
