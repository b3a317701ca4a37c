// Package web はHTML描画と認証フロー外のページハンドラーを提供します。
package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// LoadTemplates は組み込みテンプレートを Gin エンジンへ登録します。
func LoadTemplates(router *gin.Engine) {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
	router.SetHTMLTemplate(tmpl)
}
