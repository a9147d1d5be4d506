package domain

import "time"

type Lobby struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	NumTeams    int32     `json:"numTeams"`
	CreatedBy   int64     `json:"createdBy"` // 创建房间的用户 ID，同一个用户的房间不能重名
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
