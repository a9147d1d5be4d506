package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

const playerColumns = `id, lobby_id, nickname, email, skill, role, party_id, fairness_score, created_at, version`

func playerDst(p *domain.Player) []any {
	return []any{&p.ID, &p.LobbyID, &p.Nickname, &p.Email, &p.Skill, &p.Role, &p.PartyID, &p.FairnessScore, &p.CreatedAt, &p.Version}
}

func (r *Repository) CreatePlayer(player *domain.Player) error {
	query := `
		INSERT INTO players (lobby_id, nickname, email, skill, role, party_id, fairness_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{player.LobbyID, player.Nickname, player.Email, player.Skill, player.Role, player.PartyID, player.FairnessScore}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&player.ID, &player.CreatedAt, &player.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPlayerByID(id int64) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	player := &domain.Player{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(playerDst(player)...); err != nil {
		return nil, err
	}

	return player, nil
}

// GetPlayersByLobbyID 按 id 排序返回，保证每次分队时输入的顺序一致
func (r *Repository) GetPlayersByLobbyID(lobbyID int64) ([]*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE lobby_id = $1 ORDER BY id`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []*domain.Player{}
	for rows.Next() {
		player := &domain.Player{}
		if err := rows.Scan(playerDst(player)...); err != nil {
			return nil, err
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *Repository) UpdatePlayer(player *domain.Player) error {
	query := `
		UPDATE players
		SET
			nickname = $1,
			email = $2,
			skill = $3,
			role = $4,
			party_id = $5,
			fairness_score = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{player.Nickname, player.Email, player.Skill, player.Role, player.PartyID, player.FairnessScore, player.ID, player.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&player.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePlayer(id int64) error {
	query := `DELETE FROM players WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
