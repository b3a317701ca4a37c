// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/mongo/mongodriver"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourusername/member-gate/internal/auth"
	"github.com/yourusername/member-gate/internal/config"
	"github.com/yourusername/member-gate/internal/user"
	"github.com/yourusername/member-gate/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDBへの接続（ユーザー・セッションの両コレクションで共用）
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	db := client.Database(cfg.MongoDatabase)

	// 資格情報ストアの初期化（メールアドレスのユニークインデックスを保証）
	users := user.NewMongoStore(db.Collection("users"))
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	web.LoadTemplates(router)

	lifetime := time.Duration(cfg.SessionLifetimeMinutes) * time.Minute
	authManager := auth.NewManager(users, lifetime)

	// セッションストアの設定（セッションレコードは MongoDB に保存）
	secret := cfg.SessionSecret
	if secret == "" {
		// 開発用のフォールバック。release モードでは config.Validate が空を拒否する
		secret = "dev-session-secret"
	}
	store := mongodriver.NewStore(db.Collection("sessions"), int(lifetime.Seconds()), true, []byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// ルーティングの設定
	setupRoutes(router, cfg, authManager, web.NewHandler(authManager, users))

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "member-gate",
		"version": "0.1.0",
	})
}

// setupRoutes はページと認証フローの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, authManager *auth.Manager, h *web.Handler) {
	router.GET("/health", handleHealth)

	router.GET("/", h.Home)
	router.GET("/signup", h.SignupPage)
	router.GET("/login", h.LoginPage)

	router.POST("/signupSubmit", authManager.SignupSubmit)
	router.POST("/loginSubmit", authManager.LoginSubmit)

	// /members はログイン済みセッションが無ければトップへリダイレクトされる
	router.GET("/members", authManager.RequireLogin(), h.Members)
	router.GET("/logout", authManager.Logout)

	router.GET("/nosql-injection", h.NoSQLInjection)

	router.Static("/public", cfg.PublicDir)
	router.NoRoute(h.NotFound)
}
