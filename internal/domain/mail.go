package domain

const (
	MailTypeCreateUser     = "create_user"
	MailTypeResetPassword  = "reset_password"
	MailTypeTeamAssignment = "team_assignment"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

// AccountMailData 用于新建账户和重置密码两种邮件
type AccountMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type TeamAssignmentMailData struct {
	Nickname  string   `json:"nickname"`
	LobbyName string   `json:"lobbyName"`
	TeamIndex int32    `json:"teamIndex"` // 从 1 开始，方便在邮件中展示
	Teammates []string `json:"teammates"`
}
