package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/seed"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var lobbyID int64
	var file string
	var owner string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机房间及玩家, 3: 插入示例房间, 4: 从 CSV 导入玩家)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&lobbyID, "lobby-id", 0, "导入玩家的房间 ID")
	flag.StringVar(&file, "file", "", "要导入的 CSV 文件路径")
	flag.StringVar(&owner, "owner", "", "房间创建者的用户名，默认为初始管理员")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	schema, err := cfg.RoleSchema()
	if err != nil {
		logger.Error("无法解析定位表", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的玩家数量")
			return
		}

		creator, err := lobbyOwner(repo, owner, cfg.InitialAdmin.Username)
		if err != nil {
			slog.Error("无法获取房间创建者", slog.String("error", err.Error()))
			return
		}

		lobby := utils.GenerateRandomLobby(int32(cfg.Balancer.DefaultNumTeams), creator.ID)
		if err := repo.CreateLobby(lobby); err != nil {
			slog.Error("无法插入房间", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, p := range utils.GenerateRandomPlayers(lobby.ID, n, schema.Roles, cfg.Email.UserDomain) {
			if err := repo.CreatePlayer(p); err != nil {
				slog.Error("无法插入玩家", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入房间成功", slog.Int64("lobby_id", lobby.ID), slog.Int("players", cnt))
	case 3:
		creator, err := lobbyOwner(repo, owner, cfg.InitialAdmin.Username)
		if err != nil {
			slog.Error("无法获取房间创建者", slog.String("error", err.Error()))
			return
		}

		lobby, err := seed.SeedDemoLobby(repo, creator)
		if err != nil {
			slog.Error("无法插入示例房间", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入示例房间成功", slog.Int64("lobby_id", lobby.ID))
	case 4:
		if lobbyID <= 0 || file == "" {
			slog.Error("请指定房间 ID 和 CSV 文件")
			return
		}

		// 确认房间存在
		if _, err := repo.GetLobbyByID(lobbyID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的房间不存在", slog.Int64("lobby_id", lobbyID))
			default:
				slog.Error("无法获取房间", slog.String("error", err.Error()))
			}
			return
		}

		cnt, err := seed.ImportPlayersCSV(repo, lobbyID, file, schema)
		if err != nil {
			slog.Error("导入玩家失败", slog.String("error", err.Error()))
			return
		}

		slog.Info("导入玩家成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}

// lobbyOwner 按用户名查找房间创建者，未指定时使用初始管理员
func lobbyOwner(repo *repository.Repository, username, fallback string) (*domain.User, error) {
	if username == "" {
		username = fallback
	}

	user, err := repo.GetUserByUsername(username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("用户 %s 不存在", username)
	}
	return user, err
}
