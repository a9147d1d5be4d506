package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"
)

func (h *Handler) CreateLobby(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		NumTeams    *int32 `json:"numTeams" validate:"omitempty,min=1"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lobby := &domain.Lobby{
		Name:        req.Name,
		Description: req.Description,
		NumTeams:    int32(h.config.Balancer.DefaultNumTeams),
		CreatedBy:   currentUser(r).ID,
	}
	if req.NumTeams != nil {
		lobby.NumTeams = *req.NumTeams
	}

	if err := h.repository.CreateLobby(lobby); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "lobbies_created_by_name_key":
			h.badRequest(w, r, errors.New("已经存在同名的房间"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建房间成功", lobby)
}

// GetAllLobbies 管理员可以看到所有房间，组织者只能看到自己创建的房间
func (h *Handler) GetAllLobbies(w http.ResponseWriter, r *http.Request) {
	var createdBy *int64
	if user := currentUser(r); !user.IsAdmin() {
		createdBy = &user.ID
	}

	lobbies, err := h.repository.GetLobbies(createdBy)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取房间列表成功", lobbies)
}

func (h *Handler) GetLobby(w http.ResponseWriter, r *http.Request) {
	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)
	h.successResponse(w, r, "获取房间成功", lobby)
}

func (h *Handler) UpdateLobby(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name" validate:"omitempty,min=1"`
		Description *string `json:"description"`
		NumTeams    *int32  `json:"numTeams"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)
	if req.Name != nil {
		lobby.Name = *req.Name
	}
	if req.Description != nil {
		lobby.Description = *req.Description
	}
	if req.NumTeams != nil {
		lobby.NumTeams = *req.NumTeams
	}

	if err := utils.ValidateLobby(lobby); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateLobby(lobby); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "房间已被修改，请刷新后重试")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "lobbies_created_by_name_key":
			h.badRequest(w, r, errors.New("已经存在同名的房间"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新房间成功", lobby)
}

func (h *Handler) DeleteLobby(w http.ResponseWriter, r *http.Request) {
	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	if err := h.repository.DeleteLobby(lobby.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除房间成功", nil)
}
