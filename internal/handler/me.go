package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// UserDetail 是用户信息以及该用户创建的所有房间
type UserDetail struct {
	*domain.User
	Lobbies []*domain.Lobby `json:"lobbies"`
}

func (h *Handler) userDetail(user *domain.User) (*UserDetail, error) {
	lobbies, err := h.repository.GetLobbies(&user.ID)
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: user, Lobbies: lobbies}, nil
}

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.userDetail(currentUser(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取个人信息成功", detail)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8,nefield=OldPassword"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	me := currentUser(r)
	if err := bcrypt.CompareHashAndPassword([]byte(me.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "旧密码错误")
		return
	}

	if err := h.savePassword(me, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "用户信息已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新密码成功", nil)
}

// savePassword 对密码进行哈希后保存，版本号不一致时返回 sql.ErrNoRows
func (h *Handler) savePassword(user *domain.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	return h.repository.UpdateUserPassword(user)
}
