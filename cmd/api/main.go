package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/handler"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/seed"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("无法加载配置: %w", err)
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 初始管理员以及示例房间
	 **********************************************/
	admin, err := ensureInitialAdmin(cfg, repo)
	if err != nil {
		return err
	}
	if err := ensureDemoLobby(repo, admin); err != nil {
		return err
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, ch, err := openMailChannel(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer ch.Close()

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb, err := openRedis(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	/**********************************************
	 * 创建 handler 并启动 HTTP 服务器
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, ch, rdb)
	if err != nil {
		return fmt.Errorf("无法创建 handler: %w", err)
	}
	h.RegisterRoutes()

	return serve(cfg, logger, h.Mux)
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 不会真正建立连接，需要 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	return dbpool, nil
}

// ensureInitialAdmin 返回初始管理员，不存在时创建
func ensureInitialAdmin(cfg *config.Config, repo *repository.Repository) (*domain.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("无法生成初始管理员密码哈希: %w", err)
	}

	admin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.UserRoleAdmin,
	}

	err = repo.CreateUser(admin)
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		slog.Info("已创建初始管理员", "username", admin.Username)
		return admin, nil
	case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key":
		// 已经存在，直接读出来
		return repo.GetUserByUsername(cfg.InitialAdmin.Username)
	default:
		return nil, fmt.Errorf("无法创建初始管理员: %w", err)
	}
}

// ensureDemoLobby 初始管理员还没有任何房间时，为其创建示例房间
func ensureDemoLobby(repo *repository.Repository, admin *domain.User) error {
	lobbies, err := repo.GetLobbies(&admin.ID)
	if err != nil {
		return fmt.Errorf("无法获取初始管理员的房间: %w", err)
	}
	if len(lobbies) > 0 {
		return nil
	}

	lobby, err := seed.SeedDemoLobby(repo, admin)
	if err != nil {
		return fmt.Errorf("无法创建示例房间: %w", err)
	}

	slog.Info("已创建示例房间", "lobby_id", lobby.ID)
	return nil
}

func openMailChannel(cfg *config.Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("无法连接到 rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("无法建立通道: %w", err)
	}

	// 与 mail worker 声明的参数必须一致
	if _, err := ch.QueueDeclare("email_queue", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("无法声明队列: %w", err)
	}

	return conn, ch, nil
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("无法连接到 redis: %w", err)
	}

	return rdb, nil
}

// serve 启动服务器，收到 SIGINT / SIGTERM 后优雅关闭
func serve(cfg *config.Config, logger *slog.Logger, mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("无法启动服务器: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	logger.Info("服务器已成功关闭")
	return nil
}
