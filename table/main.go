package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tai16/common/config"
	"tai16/common/log"
	"tai16/common/metrics"
	"tai16/table/app"
)

// 加载配置 -> 启动监控 -> 启动牌桌服务

var configFile string

var rootCmd = &cobra.Command{
	Use:   "table",
	Short: "table 牌桌服务",
	Long:  `table 牌桌服务`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Load(configFile); err != nil {
			log.Fatal("文件配置发生错误：%v", err)
		}
		log.InitLog(config.TableNodeConfig.ID, config.TableNodeConfig.LogConf.Level)
		log.Info(fmt.Sprintf("配置文件: %+v", config.TableNodeConfig))
		go func() {
			log.Info("启动监控..., URL: http://localhost:%d/debug/statsviz/", config.TableNodeConfig.MetricPort)
			err := metrics.Serve(fmt.Sprintf("0.0.0.0:%d", config.TableNodeConfig.MetricPort))
			if err != nil {
				panic(err)
			}
		}()
		err := app.Run(context.Background())
		if err != nil {
			log.Error("发生异常: %v", err)
			os.Exit(-1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "configFile", "", "resource file")
	rootCmd.MarkFlagRequired("configFile")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("error happen: %#v", err)
		os.Exit(1)
	}
}
