package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// InsertBalanceResult 每个房间只保留最新的一次分队结果
func (r *Repository) InsertBalanceResult(result *domain.BalanceResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的分队结果删除
	query := `DELETE FROM balance_results WHERE lobby_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.LobbyID); err != nil {
		return err
	}

	query = `
		INSERT INTO balance_results (lobby_id, seed, iterations, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{result.LobbyID, result.Seed, result.Iterations, result.Cost}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, team := range result.Teams {
		query := `
			INSERT INTO balance_result_teams (balance_result_id, team_index, average_skill)
			VALUES ($1, $2, $3)
			RETURNING id
		`

		var teamID int64
		if err := tx.QueryRowContext(ctx, query, result.ID, team.Index, team.AverageSkill).Scan(&teamID); err != nil {
			return err
		}

		for position, playerID := range team.PlayerIDs {
			query := `
				INSERT INTO balance_result_team_players (balance_result_team_id, player_id, position)
				VALUES ($1, $2, $3)
			`

			if _, err := tx.ExecContext(ctx, query, teamID, playerID, position); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetBalanceResultByLobbyID(lobbyID int64) (*domain.BalanceResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			br.id,
			br.seed,
			br.iterations,
			br.cost,
			brt.team_index,
			brt.average_skill,
			brtp.player_id,
			br.created_at,
			br.version
		FROM balance_results br
		LEFT JOIN balance_result_teams brt ON br.id = brt.balance_result_id
		LEFT JOIN balance_result_team_players brtp ON brt.id = brtp.balance_result_team_id
		WHERE br.lobby_id = $1
		ORDER BY brt.team_index, brtp.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.BalanceResult{
		LobbyID: lobbyID,
		Teams:   make([]domain.BalanceResultTeam, 0),
	}

	teamsMap := make(map[int32]int) // team_index -> result.Teams 中的下标

	for rows.Next() {
		var row struct {
			resultID     int64
			seed         int64
			iterations   int32
			cost         float64
			teamIndex    sql.NullInt32
			averageSkill sql.NullFloat64
			playerID     sql.NullInt64
			createdAt    time.Time
			version      int32
		}

		dst := []any{
			&row.resultID,
			&row.seed,
			&row.iterations,
			&row.cost,
			&row.teamIndex,
			&row.averageSkill,
			&row.playerID,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		result.ID = row.resultID
		result.Seed = row.seed
		result.Iterations = row.iterations
		result.Cost = row.cost
		result.CreatedAt = row.createdAt
		result.Version = row.version

		if !row.teamIndex.Valid {
			continue
		}

		idx, exists := teamsMap[row.teamIndex.Int32]
		if !exists {
			result.Teams = append(result.Teams, domain.BalanceResultTeam{
				Index:        row.teamIndex.Int32,
				PlayerIDs:    make([]int64, 0),
				AverageSkill: row.averageSkill.Float64,
			})
			idx = len(result.Teams) - 1
			teamsMap[row.teamIndex.Int32] = idx
		}

		if !row.playerID.Valid {
			// 空队伍是合法的
			continue
		}

		result.Teams[idx].PlayerIDs = append(result.Teams[idx].PlayerIDs, row.playerID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 还需要处理没有结果的情况
	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}
