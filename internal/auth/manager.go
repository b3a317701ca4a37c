// Package auth は認証・セッションライフサイクル機能を提供します。
package auth

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/member-gate/internal/user"
)

const (
	SessionCookieName  = "mg_session"
	sessionKeyAuth     = "authenticated"
	sessionKeyName     = "name"
	sessionKeyEmail    = "email"
	sessionKeyIssuedAt = "issued_at"
)

// bcryptCost はパスワードハッシュのコスト係数です。
// 値を上げるとレイテンシと引き換えに総当たり攻撃への耐性が上がります。
const bcryptCost = 12

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// Identity はセッションに記録されたログイン済みユーザーを表します。
type Identity struct {
	Name  string
	Email string
}

// Manager は認証フローと依存コンポーネントをまとめた構造体です。
// 資格情報ストアは外部から注入します。
type Manager struct {
	users    user.Store
	lifetime time.Duration
}

// NewManager は認証マネージャーを作成します。
func NewManager(users user.Store, lifetime time.Duration) *Manager {
	return &Manager{
		users:    users,
		lifetime: lifetime,
	}
}

// Lifetime はセッションの有効期間を返します。クッキーの MaxAge に利用します。
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// CurrentUser は現在のセッションからログイン済みユーザーを読み取ります。
// 未ログイン・期限切れの場合は false を返します。
func (m *Manager) CurrentUser(c *gin.Context) (Identity, bool) {
	return m.sessionIdentity(c)
}

// establishSession はログイン済みセッションを作成します。
// サインアップ・ログイン成功時に呼び出します。
func (m *Manager) establishSession(c *gin.Context, name, email string) error {
	session := sessions.Default(c)
	session.Set(sessionKeyAuth, true)
	session.Set(sessionKeyName, name)
	session.Set(sessionKeyEmail, email)
	session.Set(sessionKeyIssuedAt, time.Now().Unix())
	return session.Save()
}

// sessionIdentity はセッションの認証状態を判定します。
// 有効期限は読み取り時に遅延評価し、期限切れセッションはここで破棄します。
func (m *Manager) sessionIdentity(c *gin.Context) (Identity, bool) {
	session := sessions.Default(c)

	authenticated, _ := session.Get(sessionKeyAuth).(bool)
	if !authenticated {
		return Identity{}, false
	}

	issuedAt := readUnix(session.Get(sessionKeyIssuedAt))
	if issuedAt.IsZero() || time.Since(issuedAt) > m.lifetime {
		session.Clear()
		_ = session.Save()
		return Identity{}, false
	}

	name, _ := session.Get(sessionKeyName).(string)
	email, _ := session.Get(sessionKeyEmail).(string)
	return Identity{Name: name, Email: email}, true
}

func hashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
