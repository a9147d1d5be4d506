package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

type ContextKey string

var (
	CurrentUserCtx ContextKey = "currentUser"
	UserInfoCtx    ContextKey = "userInfo"
	LobbyCtx       ContextKey = "lobby"
	LobbyPlayerCtx ContextKey = "lobbyPlayer"
)

// currentUser 只能在 authenticate 之后调用
func currentUser(r *http.Request) *domain.User {
	return r.Context().Value(CurrentUserCtx).(*domain.User)
}
