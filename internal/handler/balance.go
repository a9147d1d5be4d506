package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"
)

type BalanceTeamView struct {
	Index        int32            `json:"index"`
	Players      []*domain.Player `json:"players"`
	AverageSkill float64          `json:"averageSkill"`
}

// BalanceView 是生成分队方案接口的返回值，同时也是缓存的内容
type BalanceView struct {
	LobbyID     int64              `json:"lobbyID"`
	Seed        int64              `json:"seed"`
	Iterations  int                `json:"iterations"`
	Cost        float64            `json:"cost"`
	InitialCost float64            `json:"initialCost"`
	Breakdown   balancer.Breakdown `json:"breakdown"`
	Accepted    int                `json:"accepted"`
	Cancelled   bool               `json:"cancelled"`
	Teams       []BalanceTeamView  `json:"teams"`
}

func newBalanceView(lobbyID int64, parameters *balancer.Parameters, res *balancer.Result) *BalanceView {
	avgSkill := balancer.AverageSkills(res.Teams)

	view := &BalanceView{
		LobbyID:     lobbyID,
		Seed:        parameters.Seed,
		Iterations:  res.Iterations,
		Cost:        res.Cost,
		InitialCost: res.InitialCost,
		Breakdown:   res.Breakdown,
		Accepted:    res.Accepted,
		Cancelled:   res.Cancelled,
		Teams:       make([]BalanceTeamView, len(res.Teams)),
	}
	for i, team := range res.Teams {
		view.Teams[i] = BalanceTeamView{
			Index:        int32(i),
			Players:      team,
			AverageSkill: avgSkill[i],
		}
	}

	return view
}

func (h *Handler) GetRoleSchema(w http.ResponseWriter, r *http.Request) {
	type roleView struct {
		Role        domain.Role         `json:"role"`
		Requirement *balancer.RoleRange `json:"requirement"` // 为 null 表示该定位没有人数要求
	}

	roles := make([]roleView, 0, len(h.roleSchema.Roles))
	for _, role := range h.roleSchema.Roles {
		rv := roleView{Role: role}
		if rr, ok := h.roleSchema.Requirements[role]; ok {
			rv.Requirement = &rr
		}
		roles = append(roles, rv)
	}

	h.successResponse(w, r, "获取定位表成功", roles)
}

func (h *Handler) GenerateBalanceResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Iterations *int   `json:"iterations" validate:"omitempty,min=0"`
		NumTeams   *int   `json:"numTeams" validate:"omitempty,min=1"`
		Seed       *int64 `json:"seed"`
		Weights    *struct {
			SkillImbalance *float64 `json:"skillImbalance" validate:"omitempty,min=0"`
			Role           *float64 `json:"role" validate:"omitempty,min=0"`
			Party          *float64 `json:"party" validate:"omitempty,min=0"`
			Fairness       *float64 `json:"fairness" validate:"omitempty,min=0"`
		} `json:"weights"`
		RoleRequirements map[string]balancer.RoleRange `json:"roleRequirements"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	// 未指定的参数使用房间和配置中的默认值
	parameters := &balancer.Parameters{
		Iterations: h.config.Balancer.DefaultIterations,
		NumTeams:   int(lobby.NumTeams),
		Seed:       h.config.Balancer.DefaultSeed,
	}
	if req.Iterations != nil {
		parameters.Iterations = *req.Iterations
	}
	if req.NumTeams != nil {
		parameters.NumTeams = *req.NumTeams
	}
	if req.Seed != nil {
		parameters.Seed = *req.Seed
	}
	if parameters.Iterations > h.config.Balancer.MaxIterations {
		h.errorResponse(w, r, fmt.Sprintf("迭代次数不能超过 %d", h.config.Balancer.MaxIterations))
		return
	}

	weights := h.config.Weights()
	if req.Weights != nil {
		if req.Weights.SkillImbalance != nil {
			weights.SkillImbalance = *req.Weights.SkillImbalance
		}
		if req.Weights.Role != nil {
			weights.Role = *req.Weights.Role
		}
		if req.Weights.Party != nil {
			weights.Party = *req.Weights.Party
		}
		if req.Weights.Fairness != nil {
			weights.Fairness = *req.Weights.Fairness
		}
	}

	schema := h.roleSchema
	if len(req.RoleRequirements) > 0 {
		overrides := make(map[domain.Role]balancer.RoleRange, len(req.RoleRequirements))
		for role, rr := range req.RoleRequirements {
			overrides[domain.Role(role)] = rr
		}
		s, err := h.roleSchema.WithRequirements(overrides)
		if err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		schema = s
	}

	// 先查缓存，缓存出错不影响正常的计算
	cacheKey := balanceCacheKey(lobby, parameters, schema, weights)
	cached, err := h.getCachedBalance(cacheKey)
	if err != nil {
		slog.Warn("读取分队缓存失败", "key", cacheKey, "error", err)
	}
	if cached != nil {
		h.successResponse(w, r, "生成分队方案成功", cached)
		return
	}

	players, err := h.repository.GetPlayersByLobbyID(lobby.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	b, err := balancer.New(parameters, schema, weights, players)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Balancer.Timeout)*time.Second)
	defer cancel()

	start := time.Now()
	res := b.Balance(ctx)
	slog.Info("分队完成",
		"lobby", lobby.ID,
		"players", len(players),
		"teams", parameters.NumTeams,
		"iterations", res.Iterations,
		"accepted", res.Accepted,
		"initialCost", res.InitialCost,
		"cost", res.Cost,
		"cancelled", res.Cancelled,
		"duration", time.Since(start),
	)

	view := newBalanceView(lobby.ID, parameters, res)

	// 被取消的搜索结果不完整，不放入缓存
	if !res.Cancelled {
		if err := h.setCachedBalance(cacheKey, view); err != nil {
			slog.Warn("写入分队缓存失败", "key", cacheKey, "error", err)
		}
	}

	h.successResponse(w, r, "生成分队方案成功", view)
}

func (h *Handler) SubmitBalanceResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed       int64   `json:"seed"`
		Iterations int32   `json:"iterations" validate:"min=0"`
		Cost       float64 `json:"cost"`
		Teams      []struct {
			Index     int32   `json:"index" validate:"min=0"`
			PlayerIDs []int64 `json:"playerIDs"`
		} `json:"teams" validate:"required,min=1,dive"`
	}

	if err := h.decodeRequest(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	result := &domain.BalanceResult{
		LobbyID:    lobby.ID,
		Seed:       req.Seed,
		Iterations: req.Iterations,
		Cost:       req.Cost,
		Teams:      make([]domain.BalanceResultTeam, len(req.Teams)),
	}
	for i, team := range req.Teams {
		result.Teams[i] = domain.BalanceResultTeam{
			Index:     team.Index,
			PlayerIDs: team.PlayerIDs,
		}
	}

	if err := utils.ValidateBalanceResultWithLobby(result, lobby); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidIfExistsDuplicatePlayer(result); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	players, err := h.repository.GetPlayersByLobbyID(lobby.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateBalanceResultWithPlayers(result, players); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 平均实力由后端重新计算，不信任前端传来的数据
	teams, err := balancer.PartitionFromResult(result, players)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	avgSkill := balancer.AverageSkills(teams)
	for i := range result.Teams {
		result.Teams[i].AverageSkill = avgSkill[i]
	}

	if err := h.repository.InsertBalanceResult(result); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交分队结果成功", result)
}

func (h *Handler) GetBalanceResult(w http.ResponseWriter, r *http.Request) {
	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	result, err := h.repository.GetBalanceResultByLobbyID(lobby.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该房间还没有提交分队结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取分队结果成功", result)
}

func (h *Handler) NotifyBalanceResult(w http.ResponseWriter, r *http.Request) {
	lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)

	result, err := h.repository.GetBalanceResultByLobbyID(lobby.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该房间还没有提交分队结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	players, err := h.repository.GetPlayersByLobbyID(lobby.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 结果提交之后玩家可能被删除，此时需要重新提交
	teams, err := balancer.PartitionFromResult(result, players)
	if err != nil {
		h.errorResponse(w, r, "分队结果已过期，请重新提交")
		return
	}

	sent := 0
	for i, team := range teams {
		for _, p := range team {
			if p.Email == "" {
				continue
			}

			teammates := make([]string, 0, len(team)-1)
			for _, mate := range team {
				if mate.ID != p.ID {
					teammates = append(teammates, mate.Nickname)
				}
			}

			mailMessage := domain.MailMessage{
				Type: domain.MailTypeTeamAssignment,
				To:   p.Email,
				Data: domain.TeamAssignmentMailData{
					Nickname:  p.Nickname,
					LobbyName: lobby.Name,
					TeamIndex: result.Teams[i].Index + 1,
					Teammates: teammates,
				},
			}
			if err := h.publishMail(mailMessage); err != nil {
				h.internalServerError(w, r, err)
				return
			}
			sent++
		}
	}

	h.successResponse(w, r, fmt.Sprintf("已向 %d 名玩家发送分队通知", sent), nil)
}
