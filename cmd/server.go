package cmd

import (
	"Hummify/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动Hummify服务器",
	Long:  `启动Hummify的HTTP服务器，提供录音上传、音频合成与收藏管理API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
