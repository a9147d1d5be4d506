package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname      string   `json:"nickname" validate:"required"`
		Email         string   `json:"email" validate:"omitempty,email"`
		Skill         *float64 `json:"skill" validate:"required"`
		Role          string   `json:"role" validate:"required"`
		PartyID       *int64   `json:"partyID"`
		FairnessScore float64  `json:"fairnessScore"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	player, err := domain.NewPlayer(0, *req.Skill, domain.Role(req.Role), req.PartyID, req.FairnessScore, h.roleSchema.Roles)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	player.LobbyID = lobby.ID
	player.Nickname = req.Nickname
	player.Email = req.Email

	if err := h.repository.CreatePlayer(player); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "players_lobby_id_nickname_key":
			h.badRequest(w, r, errors.New("该房间中已存在同名玩家"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 玩家发生变化，之前缓存的分队结果不再有效
	if err := h.repository.TouchLobby(lobby.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "添加玩家成功", player)
}

func (h *Handler) GetLobbyPlayers(w http.ResponseWriter, r *http.Request) {
	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	players, err := h.repository.GetPlayersByLobbyID(lobby.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取玩家列表成功", players)
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname      *string  `json:"nickname" validate:"omitempty,min=1"`
		Email         *string  `json:"email" validate:"omitempty,email"`
		Skill         *float64 `json:"skill"`
		Role          *string  `json:"role"`
		PartyID       *int64   `json:"partyID"`
		LeaveParty    bool     `json:"leaveParty"` // partyID 为空无法区分“不修改”和“退出组队”
		FairnessScore *float64 `json:"fairnessScore"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)
	player := r.Context().Value(LobbyPlayerCtx).(*domain.Player)

	if req.Nickname != nil {
		player.Nickname = *req.Nickname
	}
	if req.Email != nil {
		player.Email = *req.Email
	}
	if req.Skill != nil {
		player.Skill = *req.Skill
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !h.roleSchema.Contains(role) {
			h.errorResponse(w, r, domain.ErrUnknownRole.Error())
			return
		}
		player.Role = role
	}
	switch {
	case req.LeaveParty:
		player.PartyID = nil
	case req.PartyID != nil:
		player.PartyID = domain.PartyOf(*req.PartyID)
	}
	if req.FairnessScore != nil {
		player.FairnessScore = *req.FairnessScore
	}

	if err := h.repository.UpdatePlayer(player); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "玩家已被修改，请刷新后重试")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "players_lobby_id_nickname_key":
			h.badRequest(w, r, errors.New("该房间中已存在同名玩家"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.TouchLobby(lobby.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新玩家成功", player)
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)
	player := r.Context().Value(LobbyPlayerCtx).(*domain.Player)

	if err := h.repository.DeletePlayer(player.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.TouchLobby(lobby.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除玩家成功", nil)
}
