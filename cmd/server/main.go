package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"bartab_backend/internal/cache"
	"bartab_backend/internal/config"
	"bartab_backend/internal/database"
	"bartab_backend/internal/middleware"
	"bartab_backend/internal/router"
	"bartab_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.Env)
	utils.InitJWT(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	database.InitDB(cfg)
	utils.LogInfo("Database initialized", map[string]interface{}{"host": cfg.DBHost, "database": cfg.DBName})

	ranking := cache.NewRankingCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if ranking == nil {
		utils.LogInfo("Popularity ranking cache disabled, serving rankings from SQL")
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	dbConn := database.GetDB()
	sweep := router.Setup(engine, dbConn, cfg, ranking)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweep.Start(ctx)

	utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "env": cfg.Env})
	if err := engine.Run(":" + cfg.Port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
