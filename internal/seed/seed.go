package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"
)

// 导入玩家时必须存在的列，email、party_id 和 fairness_score 可以省略
var requiredHeaders = []string{"nickname", "skill", "role"}

var ErrMissingHeader = errors.New("缺少必需的列")

// ParsePlayersCSV 从 CSV 中读取玩家，第一行必须是表头，party_id 为空表示没有组队
func ParsePlayersCSV(r io.Reader, schema *balancer.RoleSchema) ([]*domain.Player, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, h)
		}
	}

	players := make([]*domain.Player, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line+1, err)
		}
		line++

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		player, err := parsePlayerRecord(record, schema)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		players = append(players, player)
	}

	return players, nil
}

func parsePlayerRecord(record map[string]string, schema *balancer.RoleSchema) (*domain.Player, error) {
	skill, err := strconv.ParseFloat(record["skill"], 64)
	if err != nil {
		return nil, fmt.Errorf("实力值 %q 无效", record["skill"])
	}

	var partyID *int64
	if v := record["party_id"]; v != "" {
		pid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("组队 ID %q 无效", v)
		}
		partyID = &pid
	}

	var fairness float64
	if v := record["fairness_score"]; v != "" {
		fairness, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("公平性分数 %q 无效", v)
		}
	}

	player, err := domain.NewPlayer(0, skill, domain.Role(record["role"]), partyID, fairness, schema.Roles)
	if err != nil {
		return nil, err
	}
	player.Nickname = record["nickname"]
	player.Email = record["email"]
	if err := utils.ValidatePlayerNickname(player); err != nil {
		return nil, err
	}

	return player, nil
}

// ImportPlayersCSV 将 CSV 文件中的玩家导入到指定房间，返回成功插入的数量
func ImportPlayersCSV(r *repository.Repository, lobbyID int64, path string, schema *balancer.RoleSchema) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	players, err := ParsePlayersCSV(file, schema)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, p := range players {
		p.LobbyID = lobbyID
		if err := r.CreatePlayer(p); err != nil {
			slog.Error("插入玩家失败", "nickname", p.Nickname, "error", err)
			continue
		}
		cnt++
	}

	if cnt > 0 {
		if err := r.TouchLobby(lobbyID); err != nil {
			return cnt, err
		}
	}

	return cnt, nil
}

const DemoLobbyName = "示例房间"

// SeedDemoLobby 为 owner 创建一个包含 10 名示例玩家的房间
func SeedDemoLobby(r *repository.Repository, owner *domain.User) (*domain.Lobby, error) {
	lobby := &domain.Lobby{
		Name:        DemoLobbyName,
		Description: "5v5 示例玩家，其中 player1 和 player2 组队",
		NumTeams:    balancer.DefaultNumTeams,
		CreatedBy:   owner.ID,
	}
	if err := r.CreateLobby(lobby); err != nil {
		return nil, err
	}

	for _, p := range balancer.DemoPlayers() {
		p.LobbyID = lobby.ID
		if err := r.CreatePlayer(p); err != nil {
			return nil, err
		}
	}

	return lobby, nil
}
