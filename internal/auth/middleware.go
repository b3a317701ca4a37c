package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireLogin はセッションを検証するミドルウェアを返します。
// 未認証（セッション無し・期限切れ・authenticated が false）の場合は
// トップページへリダイレクトします。
// セッションの主張を有効期限まで信頼し、リクエストごとの
// 資格情報ストアへの再照会は行いません。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := m.sessionIdentity(c)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, ident.Name)
		c.Next()
	}
}
