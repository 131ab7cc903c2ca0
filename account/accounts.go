package account

import (
	"crypto/sha256"
	"encoding/hex"

	"fabline/authority"
	"fabline/bizerror"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc = CreateUser
	QueryUsersFunc = QueryUsers
	LoadPermsFunc  = LoadPerms
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Role: c.Role, CreateTime: types.CurrentTimestamp()}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	var users []User
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Order("ID ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	r := make([]UserInfo, 0, len(users))
	for _, u := range users {
		r = append(r, UserInfo{ID: u.ID, Name: u.Name, Nickname: u.Nickname, Role: u.Role})
	}
	return &r, nil
}

// LoadPerms builds the permission set of the user for the session
func LoadPerms(uid types.ID, db *gorm.DB) (authority.Permissions, error) {
	user := User{}
	if err := db.Where(&User{ID: uid}).First(&user).Error; err != nil {
		return nil, err
	}
	if user.Role == "" {
		return authority.Permissions{}, nil
	}
	return authority.Permissions{user.Role}, nil
}
