package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// 以下接口只有管理员可以调用

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		FullName string `json:"fullName" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Role     string `json:"role" validate:"omitempty,oneof=组织者 管理员"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	role := domain.UserRoleOrganizer
	if req.Role != "" {
		role = domain.UserRole(req.Role)
	}

	// 初始密码随机生成，通过邮件发送给用户
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         role,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key":
			h.badRequest(w, r, errors.New("用户名已存在"))
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.badRequest(w, r, errors.New("邮箱已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishMail(accountMail(domain.MailTypeCreateUser, user, password)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "用户创建成功", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.userDetail(r.Context().Value(UserInfoCtx).(*domain.User))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户信息成功", detail)
}

// UpdateUserStatus 停用账户后该用户无法登录，已经登录的请求也会在 authenticate 中被拒绝
func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"isActive" validate:"required"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)
	if user.ID == currentUser(r).ID {
		h.errorResponse(w, r, "不能修改自己的账户状态")
		return
	}

	user.IsActive = *req.IsActive
	if err := h.repository.UpdateUserStatus(user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "用户信息已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新账户状态成功", user)
}

// ResetUserPassword 生成新的随机密码并通过邮件发送给用户
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	if err := h.savePassword(user, password); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "用户信息已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.publishMail(accountMail(domain.MailTypeResetPassword, user, password)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "重置密码成功，新密码已发送到用户邮箱", nil)
}

func accountMail(mailType string, user *domain.User, password string) domain.MailMessage {
	return domain.MailMessage{
		Type: mailType,
		To:   user.Email,
		Data: domain.AccountMailData{
			FullName: user.FullName,
			Username: user.Username,
			Password: password,
		},
	}
}
