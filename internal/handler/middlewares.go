package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			slog.Info("已处理请求",
				"requestID", middleware.GetReqID(r.Context()),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"ip", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			// 堆栈单独输出到 stderr，放进 slog 的一行里没法看
			fmt.Fprintf(os.Stderr, "panic: %v\n%s", rec, debug.Stack())
			h.internalServerError(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate 校验令牌并从数据库加载当前用户，停用的账户会被拒绝
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			h.unauthorized(w, r, "用户未登录")
			return
		}

		userID, err := h.parseToken(cookie.Value)
		if err != nil {
			h.unauthorized(w, r, errInvalidToken.Error())
			return
		}

		user, err := h.repository.GetUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.unauthorized(w, r, "用户不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if !user.IsActive {
			h.forbidden(w, r, "账户已被停用")
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			h.forbidden(w, r, "权限不足")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loadByID 解析 URL 参数 param 中的 ID，找到对应的实体后以 key 放入 context
func loadByID[T any](h *Handler, param string, key ContextKey, name string, get func(int64) (*T, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil {
				h.errorResponse(w, r, name+"ID无效")
				return
			}

			v, err := get(id)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, name+"不存在")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), key, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// protectInitialAdmin 初始管理员不能被停用或重置密码
func (h *Handler) protectInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.forbidden(w, r, "禁止操作初始管理员")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorizeLobby 挂在房间加载之后，组织者只能访问自己创建的房间
func (h *Handler) authorizeLobby(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)
		if !currentUser(r).CanManage(lobby) {
			h.forbidden(w, r, "无权访问该房间")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// playerInLobby 挂在玩家加载之后，确保玩家属于当前房间
func (h *Handler) playerInLobby(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lobby := r.Context().Value(LobbyCtx).(*domain.Lobby)
		player := r.Context().Value(LobbyPlayerCtx).(*domain.Player)
		if player.LobbyID != lobby.ID {
			h.errorResponse(w, r, "玩家不在该房间中")
			return
		}
		next.ServeHTTP(w, r)
	})
}
