package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.UserRoleOrganizer, // 随机用户都是组织者，管理员只有初始管理员
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomLobby(numTeams int32, createdBy int64) *domain.Lobby {
	return &domain.Lobby{
		Name:        "房间" + GenerateRandomID(3, 3),
		Description: "房间描述" + GenerateRandomID(20, 10),
		NumTeams:    numTeams,
		CreatedBy:   createdBy,
	}
}

// GenerateRandomPlayer 随机生成一个玩家，大约三分之一的玩家会被分到 partyCount 个组队之一
func GenerateRandomPlayer(lobbyID int64, roles []domain.Role, partyCount int, emailDomainName string) *domain.Player {
	nickname := GenerateUsernameFromChineseName(GenerateRandomChineseName())

	player := &domain.Player{
		LobbyID:       lobbyID,
		Nickname:      nickname,
		Email:         nickname + "@" + emailDomainName,
		Skill:         float64(1000 + rand.Intn(40)*50), // 1000~2950，步长 50
		Role:          roles[rand.Intn(len(roles))],
		FairnessScore: float64(rand.Intn(11)) / 10,
	}

	if partyCount > 0 && rand.Intn(3) == 0 {
		player.PartyID = domain.PartyOf(int64(rand.Intn(partyCount) + 1))
	}

	return player
}

func GenerateRandomPlayers(lobbyID int64, n int, roles []domain.Role, emailDomainName string) []*domain.Player {
	players := make([]*domain.Player, n)
	for i := range players {
		players[i] = GenerateRandomPlayer(lobbyID, roles, max(n/4, 1), emailDomainName)
		// 昵称在同一个房间内必须唯一
		players[i].Nickname = fmt.Sprintf("%s%02d", players[i].Nickname, i)
	}
	return players
}
