package web

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/member-gate/internal/auth"
	"github.com/yourusername/member-gate/internal/user"
)

// memberImages は /members で無作為に1枚表示する画像です。
var memberImages = []string{"obama.png", "biden.png", "trump.png"}

var queryValidate = validator.New()

// Handler はページ描画ハンドラーをまとめた構造体です。
type Handler struct {
	auth  *auth.Manager
	users user.Store
}

// NewHandler は Handler を作成します。
func NewHandler(authManager *auth.Manager, users user.Store) *Handler {
	return &Handler{
		auth:  authManager,
		users: users,
	}
}

// Home は GET / のハンドラーです。
// ログイン済みなら挨拶、未ログインならサインアップ/ログインへの導線を表示します。
func (h *Handler) Home(c *gin.Context) {
	ident, ok := h.auth.CurrentUser(c)
	c.HTML(http.StatusOK, "home.tmpl", gin.H{
		"Authenticated": ok,
		"Name":          ident.Name,
	})
}

// SignupPage は GET /signup のハンドラーです。
func (h *Handler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.tmpl", nil)
}

// LoginPage は GET /login のハンドラーです。
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", nil)
}

// Members は GET /members のハンドラーです。
// RequireLogin ミドルウェアの背後に配置します。
func (h *Handler) Members(c *gin.Context) {
	name := c.GetString(auth.ContextUserKey)
	image := memberImages[rand.Intn(len(memberImages))]
	c.HTML(http.StatusOK, "members.tmpl", gin.H{
		"Name":  name,
		"Image": image,
	})
}

// NoSQLInjection は GET /nosql-injection のハンドラーです。
// クエリパラメータをデータベースのフィルタに渡す前に検証するデモです。
// 検証を挟まない場合、user[$ne]=name のような構造化パラメータが
// フィルタとして解釈され、全ユーザーの情報が漏えいし得ます。
func (h *Handler) NoSQLInjection(c *gin.Context) {
	username := c.Query("user")
	if username == "" {
		c.HTML(http.StatusOK, "nosql_hint.tmpl", nil)
		return
	}

	if err := queryValidate.Var(username, "required,max=20"); err != nil {
		c.HTML(http.StatusOK, "nosql_blocked.tmpl", nil)
		return
	}

	matches, err := h.users.FindByName(c.Request.Context(), username)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
			"Message": "An internal error occurred. Please try again later.",
		})
		return
	}

	data := gin.H{"Found": len(matches) > 0}
	if len(matches) > 0 {
		data["Name"] = matches[0].Name
	}
	c.HTML(http.StatusOK, "nosql_result.tmpl", data)
}

// NotFound は未定義ルートのハンドラーです。
func (h *Handler) NotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "Page not found - 404")
}
