package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/member-gate/internal/user"
)

// validate は入力スキーマの検証器です。
// 値がデータベースのフィルタに渡る前に必ずここを通します。
var validate = validator.New()

type signupForm struct {
	Name     string `validate:"required,alphanum,max=20"`
	Email    string `validate:"required,email,max=50"`
	Password string `validate:"required,max=20"`
}

type loginForm struct {
	Email    string `validate:"required,email,max=50"`
	Password string `validate:"required,max=20"`
}

// SignupSubmit は POST /signupSubmit のハンドラーです。
// 検証 → ハッシュ化 → ユーザー登録 → セッション確立の順に処理します。
func (m *Manager) SignupSubmit(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	// 空チェックはスキーマ検証より先に行い、専用メッセージで打ち切る
	if name == "" || email == "" || password == "" {
		renderRetry(c, "Name/email/password cannot be empty.", "/signup")
		return
	}

	form := signupForm{Name: name, Email: email, Password: password}
	if err := validate.Struct(form); err != nil {
		renderRetry(c, validationMessage(err), "/signup")
		return
	}

	hash, err := hashPassword(password)
	if err != nil {
		renderFault(c)
		return
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := m.users.Insert(c.Request.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			renderRetry(c, "This email is already registered.", "/signup")
			return
		}
		renderFault(c)
		return
	}

	if err := m.establishSession(c, name, email); err != nil {
		renderFault(c)
		return
	}
	c.Redirect(http.StatusFound, "/members")
}

// LoginSubmit は POST /loginSubmit のハンドラーです。
// 該当ユーザーがちょうど1件でない場合は理由を開示せずログイン画面へ戻します。
func (m *Manager) LoginSubmit(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	if email == "" || password == "" {
		renderRetry(c, "Email/password cannot be empty.", "/login")
		return
	}

	form := loginForm{Email: email, Password: password}
	if err := validate.Struct(form); err != nil {
		renderRetry(c, validationMessage(err), "/login")
		return
	}

	candidates, err := m.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		renderFault(c)
		return
	}

	// 「存在しない」「重複している」のどちらでも同じリダイレクトにする
	if len(candidates) != 1 {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if !verifyPassword(candidates[0].PasswordHash, password) {
		renderRetry(c, "email/password combination incorrect.", "/login")
		return
	}

	if err := m.establishSession(c, candidates[0].Name, email); err != nil {
		renderFault(c)
		return
	}
	c.Redirect(http.StatusFound, "/members")
}

// Logout は GET /logout のハンドラーです。
// セッションレコードごと破棄します。セッションが無い状態で呼んでも失敗しません。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		renderFault(c)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// validationMessage は検証エラーをユーザー向けメッセージへ変換します。
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid input."
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is not allowed to be empty.", field)
	case "alphanum":
		return fmt.Sprintf("%s must only contain alpha-numeric characters.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email.", field)
	case "max":
		return fmt.Sprintf("%s length must be less than or equal to %s characters long.", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// renderRetry はユーザーが修正可能なエラーを再試行リンク付きで表示します。
func renderRetry(c *gin.Context, message, retryPath string) {
	c.HTML(http.StatusOK, "retry.tmpl", gin.H{
		"Message":   message,
		"RetryPath": retryPath,
	})
}

// renderFault はストアやハッシュ処理の失敗を 5xx として表示します。
func renderFault(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
		"Message": "An internal error occurred. Please try again later.",
	})
}
