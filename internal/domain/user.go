package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleOrganizer UserRole = "组织者"
	UserRoleAdmin     UserRole = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanManage 管理员可以管理所有房间，组织者只能管理自己创建的房间
func (u *User) CanManage(lobby *Lobby) bool {
	return u.IsAdmin() || lobby.CreatedBy == u.ID
}

// UserOverview 用于用户列表，附带该用户创建的房间数量
type UserOverview struct {
	User
	LobbyCount int `json:"lobbyCount"`
}
