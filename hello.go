package main

import (
	"club-import/coaches"
	"club-import/common"
	"club-import/exports"
	"club-import/imports"
	"club-import/players"
	"club-import/store"
	"club-import/teams"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Migrate domain models
	for _, migrate := range []func() error{players.AutoMigrate, teams.AutoMigrate, coaches.AutoMigrate} {
		if err := migrate(); err != nil {
			return err
		}
	}

	// Migrate job tracking tables
	return common.AutoMigrateJobs(db)
}

func NewRouter(cfg *common.Config, log *logrus.Logger, st store.Store) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), common.MetricsMiddleware(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1", common.AuthMiddleware(cfg.JWTSecret))
	imports.NewHandler(st, cfg, log).RegisterRoutes(v1)
	exports.NewHandler(log).RegisterRoutes(v1)
	return r
}

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := common.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := common.Init(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	if err := Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Ensure database connection is closed on exit
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Warn("failed to get sql.DB")
	} else {
		defer sqlDB.Close()
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, API authentication is disabled")
	}

	r := NewRouter(cfg, log, store.NewGormStore(db))

	log.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
