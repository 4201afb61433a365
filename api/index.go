package handler

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	config "fare-insight-api/configs"
	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/server"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		// 環境変数はホスティング側の設定から読み込まれるため、godotenvは使用しません。
		cfg := config.LoadConfig()
		logg := logger.NewLogger(cfg.Environment, cfg.LogLevel)

		a, err := server.NewApp(cfg, logg)
		if err != nil {
			log.Printf("FATAL: failed to initialize application: %v", err)
			return
		}
		app = server.NewRouter(a)
	})
	return app
}

// Handler はサーバーレス環境からのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	engine := setupApp()
	if engine == nil {
		http.Error(w, `{"success":false,"error":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	engine.ServeHTTP(w, r)
}
