package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Role 表示玩家在游戏中的定位，合法取值由角色表决定
type Role string

const (
	RoleDuelist    Role = "duelist"
	RoleController Role = "controller"
	RoleInitiator  Role = "initiator"
	RoleSentinel   Role = "sentinel"
)

var ErrUnknownRole = errors.New("未知的玩家定位")

type Player struct {
	ID            int64     `json:"id"`
	LobbyID       int64     `json:"lobbyID"`
	Nickname      string    `json:"nickname"`
	Email         string    `json:"email"`
	Skill         float64   `json:"skill"`
	Role          Role      `json:"role"`
	PartyID       *int64    `json:"partyID"` // 为 nil 时表示该玩家没有组队
	FairnessScore float64   `json:"fairnessScore"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}

// NewPlayer 创建一个玩家，role 必须在 knownRoles 之中
func NewPlayer(id int64, skill float64, role Role, partyID *int64, fairnessScore float64, knownRoles []Role) (*Player, error) {
	if !slices.Contains(knownRoles, role) {
		return nil, fmt.Errorf("%w: 玩家 %d 的定位 %q", ErrUnknownRole, id, role)
	}

	p := &Player{
		ID:            id,
		Skill:         skill,
		Role:          role,
		FairnessScore: fairnessScore,
	}
	if partyID != nil {
		// 复制一份，避免调用方之后修改
		pid := *partyID
		p.PartyID = &pid
	}

	return p, nil
}

func (p *Player) InParty() bool {
	return p.PartyID != nil
}

// PartyOf 是构造 PartyID 的便捷函数
func PartyOf(id int64) *int64 {
	return &id
}
