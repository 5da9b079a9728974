package cmd

import (
	"context"
	"fmt"
	"log"

	"Hummify/config"
	"Hummify/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `查看MinIO存储桶的使用情况，按目录统计对象数量和容量。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}

		stats, err := store.Stats(context.Background(), minioPrefix)
		if err != nil {
			log.Fatalf("获取存储桶统计信息失败: %v", err)
		}

		fmt.Printf("对象总数: %d\n", stats.ObjectCount)
		fmt.Printf("总容量: %s\n", formatSize(stats.TotalBytes))
		for folder, size := range stats.ByFolder {
			fmt.Printf("  %s: %s\n", folder, formatSize(size))
		}
	},
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤对象")
}
