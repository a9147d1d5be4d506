package domain

import "time"

type BalanceResultTeam struct {
	Index        int32   `json:"index"`
	PlayerIDs    []int64 `json:"playerIDs"`
	AverageSkill float64 `json:"averageSkill"`
}

type BalanceResult struct {
	ID         int64               `json:"id"`
	LobbyID    int64               `json:"lobbyID"`
	Seed       int64               `json:"seed"`
	Iterations int32               `json:"iterations"`
	Cost       float64             `json:"cost"`
	Teams      []BalanceResultTeam `json:"teams"`
	CreatedAt  time.Time           `json:"createdAt"`
	Version    int32               `json:"-"`
}
