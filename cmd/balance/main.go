package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// 离线分队工具，不依赖数据库和其他服务，便于调参
func main() {
	var file string
	var iterations int
	var numTeams int
	var seed int64
	var asJSON bool

	flag.StringVar(&file, "file", "", "玩家列表的 JSON 文件路径，为空时使用示例玩家")
	flag.IntVar(&iterations, "iterations", balancer.DefaultIterations, "迭代次数")
	flag.IntVar(&numTeams, "teams", balancer.DefaultNumTeams, "队伍数量")
	flag.Int64Var(&seed, "seed", balancer.DefaultSeed, "随机种子")
	flag.BoolVar(&asJSON, "json", false, "以 JSON 格式输出结果")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	players := balancer.DemoPlayers()
	if file != "" {
		var err error
		players, err = readPlayers(file)
		if err != nil {
			logger.Error("无法读取玩家列表", slog.String("file", file), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	parameters := &balancer.Parameters{
		Iterations: iterations,
		NumTeams:   numTeams,
		Seed:       seed,
	}
	b, err := balancer.New(parameters, balancer.DefaultRoleSchema(), balancer.DefaultWeights(), players)
	if err != nil {
		logger.Error("参数不合法", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CTRL+C 时输出目前为止最好的结果
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := b.Balance(ctx)
	logger.Info("分队完成",
		"players", len(players),
		"iterations", res.Iterations,
		"accepted", res.Accepted,
		"initialCost", res.InitialCost,
		"cost", res.Cost,
		"cancelled", res.Cancelled,
	)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.ToBalanceResult(0, parameters)); err != nil {
			logger.Error("无法输出结果", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	avgSkill := balancer.AverageSkills(res.Teams)
	for i, team := range res.Teams {
		fmt.Printf("队伍 %d（平均实力 %.1f）\n", i+1, avgSkill[i])
		for _, p := range team {
			party := "-"
			if p.InParty() {
				party = fmt.Sprint(*p.PartyID)
			}
			fmt.Printf("  %-12s %-10s %7.1f  组队 %s\n", playerName(p), p.Role, p.Skill, party)
		}
	}
	fmt.Printf("代价: %.2f（实力差 %.2f，定位 %.2f，组队 %.2f，公平性 %.2f）\n",
		res.Cost, res.Breakdown.SkillImbalance, res.Breakdown.Role, res.Breakdown.Party, res.Breakdown.Fairness)
}

func readPlayers(path string) ([]*domain.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var players []*domain.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, err
	}

	return players, nil
}

func playerName(p *domain.Player) string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return fmt.Sprintf("#%d", p.ID)
}
