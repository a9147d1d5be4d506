package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

const lobbyColumns = `id, name, description, num_teams, created_by, created_at, version`

func lobbyDst(l *domain.Lobby) []any {
	return []any{&l.ID, &l.Name, &l.Description, &l.NumTeams, &l.CreatedBy, &l.CreatedAt, &l.Version}
}

func (r *Repository) CreateLobby(lobby *domain.Lobby) error {
	query := `
		INSERT INTO lobbies (name, description, num_teams, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{lobby.Name, lobby.Description, lobby.NumTeams, lobby.CreatedBy}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&lobby.ID, &lobby.CreatedAt, &lobby.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLobbyByID(id int64) (*domain.Lobby, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	lobby := &domain.Lobby{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(lobbyDst(lobby)...); err != nil {
		return nil, err
	}

	return lobby, nil
}

// GetLobbies 返回 createdBy 创建的房间，createdBy 为 nil 时返回所有房间
func (r *Repository) GetLobbies(createdBy *int64) ([]*domain.Lobby, error) {
	query := `
		SELECT ` + lobbyColumns + `
		FROM lobbies
		WHERE $1::BIGINT IS NULL OR created_by = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lobbies := []*domain.Lobby{}
	for rows.Next() {
		lobby := &domain.Lobby{}
		if err := rows.Scan(lobbyDst(lobby)...); err != nil {
			return nil, err
		}
		lobbies = append(lobbies, lobby)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lobbies, nil
}

// UpdateLobby 使用乐观锁更新，版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateLobby(lobby *domain.Lobby) error {
	query := `
		UPDATE lobbies
		SET
			name = $1,
			description = $2,
			num_teams = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{lobby.Name, lobby.Description, lobby.NumTeams, lobby.ID, lobby.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&lobby.Version); err != nil {
		return err
	}

	return nil
}

// TouchLobby 增加房间的版本号，玩家发生变化时调用，使缓存的分队结果失效
func (r *Repository) TouchLobby(id int64) error {
	query := `UPDATE lobbies SET version = version + 1 WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteLobby(id int64) error {
	query := `DELETE FROM lobbies WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
