package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// balanceCacheKey 由房间的版本号和所有搜索参数组成，玩家或房间发生变化时版本号会增加，旧的 key 自然失效
func balanceCacheKey(lobby *domain.Lobby, parameters *balancer.Parameters, schema *balancer.RoleSchema, weights balancer.Weights) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "balance_%d_v%d_it%d_n%d_s%d", lobby.ID, lobby.Version, parameters.Iterations, parameters.NumTeams, parameters.Seed)
	fmt.Fprintf(&sb, "_w%g,%g,%g,%g", weights.SkillImbalance, weights.Role, weights.Party, weights.Fairness)
	// 按定位表的顺序输出，保证 key 稳定
	for _, role := range schema.Roles {
		if rr, ok := schema.Requirements[role]; ok {
			fmt.Fprintf(&sb, "_%s%d-%d", role, rr.Min, rr.Max)
		}
	}
	return sb.String()
}

// getCachedBalance 未命中时返回 nil, nil
func (h *Handler) getCachedBalance(key string) (*BalanceView, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	data, err := h.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var view BalanceView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

func (h *Handler) setCachedBalance(key string, view *BalanceView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	return h.redisClient.Set(ctx, key, data, time.Duration(h.config.Balancer.CacheExpiration)*time.Second).Err()
}
