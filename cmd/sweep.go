package cmd

import (
	"context"
	"fmt"

	"Hummify/cache"
	"Hummify/config"
	"Hummify/core/cleanup"
	"Hummify/db"
	"Hummify/logger"
	"Hummify/repository"
	"Hummify/storage"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "运行一次存储回收",
	Long:  `立即执行一次回收清理：删除超过保留期限的原始录音和未收藏的合成音频（包括对象存储中的文件和数据库记录）`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		logger.InitLogger(logger.Config{Level: logger.InfoLevel})

		if err := db.ConnectDB(cfg); err != nil {
			logger.Fatal("Failed to connect to database", logger.ErrorField(err))
		}
		defer db.DB.Close()

		var redisClient *redis.Client
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("Redis unavailable, cache invalidation skipped", logger.ErrorField(err))
		} else {
			redisClient = cache.RedisClient
			defer cache.CloseRedis()
		}
		artifactCache := cache.NewArtifactCache(redisClient, cfg.RetentionWindow)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
		}

		sweeper := cleanup.NewSweeper(
			repository.NewMySQLRecordingRepository(db.DB),
			repository.NewMySQLConvertedRepository(db.DB),
			repository.NewMySQLSavedRepository(db.DB),
			store,
			artifactCache,
			cfg.RetentionWindow,
			cfg.SweepInterval,
		)

		res := sweeper.RunOnce(context.Background())
		fmt.Printf("回收完成: recordings=%d converted=%d retained=%d failures=%d\n",
			res.ReclaimedRecordings, res.ReclaimedConverted, res.Retained, res.Failures)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
