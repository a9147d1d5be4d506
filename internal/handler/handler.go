package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	roleSchema  *balancer.RoleSchema

	Mux *chi.Mux
}

// newValidator 创建带中文错误信息的校验器
func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	schema, err := cfg.RoleSchema()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		roleSchema:  schema,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(middleware.RequestID)
	h.Mux.Use(middleware.RealIP)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/", h.CreateUser)
			r.Get("/", h.ListUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(loadByID(h, "id", UserInfoCtx, "用户", h.repository.GetUserByID))
				r.Get("/", h.GetUserInfo)
				r.With(h.protectInitialAdmin).Patch("/status", h.UpdateUserStatus)
				r.With(h.protectInitialAdmin).Post("/password-reset", h.ResetUserPassword)
			})
		})

		// 游戏的定位表，前端用于渲染玩家表格中的定位选项
		r.Get("/roles", h.GetRoleSchema)

		r.Route("/lobbies", func(r chi.Router) {
			r.Post("/", h.CreateLobby)
			r.Get("/", h.GetAllLobbies)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(loadByID(h, "id", LobbyCtx, "房间", h.repository.GetLobbyByID))
				r.Use(h.authorizeLobby)
				r.Get("/", h.GetLobby)
				r.Patch("/", h.UpdateLobby)
				r.Delete("/", h.DeleteLobby)
				r.Route("/players", func(r chi.Router) {
					r.Post("/", h.CreatePlayer)
					r.Get("/", h.GetLobbyPlayers)
					r.Route("/{playerID}", func(r chi.Router) {
						r.Use(loadByID(h, "playerID", LobbyPlayerCtx, "玩家", h.repository.GetPlayerByID))
						r.Use(h.playerInLobby)
						r.Patch("/", h.UpdatePlayer)
						r.Delete("/", h.DeletePlayer)
					})
				})
				r.Post("/balance", h.GenerateBalanceResult)
				r.Route("/balance-result", func(r chi.Router) {
					r.Post("/", h.SubmitBalanceResult)
					r.Get("/", h.GetBalanceResult)
					r.Post("/notify", h.NotifyBalanceResult)
				})
			})
		})
	})
}
