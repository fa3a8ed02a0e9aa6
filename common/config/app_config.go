package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"tai16/common/log"
)

// TableNodeConfig table 服务的全局配置
var TableNodeConfig TableConfiguration

type BaseConfig struct {
	ID         string `mapstructure:"id"`
	ServerType string `mapstructure:"serverType"`
	MetricPort int    `mapstructure:"metricPort"`
}

// TableConfiguration table 服务配置
// 牌桌核心只依赖 nats(下行推送)、redis(在线连接)、mongo(结算记录)
type TableConfiguration struct {
	BaseConfig   `mapstructure:",squash"`
	LogConf      `mapstructure:"log"`
	NatsConf     `mapstructure:"nats"`
	RedisConf    `mapstructure:"redis"`
	MongoConf    `mapstructure:"mongo"`
	WsConf       `mapstructure:"ws"`
	GameSettings `mapstructure:"game"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type NatsConf struct {
	URL string `mapstructure:"url"`
}

type RedisConf struct {
	Addr         string   `mapstructure:"addr"`
	ClusterAddrs []string `mapstructure:"clusterAddrs"`
	Password     string   `mapstructure:"password"`
	PoolSize     int      `mapstructure:"poolSize"`
	MinIdleConns int      `mapstructure:"minIdleConns"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
}

type MongoConf struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type WsConf struct {
	Addr string `mapstructure:"addr"`
}

// GameSettings 牌局规则配置
type GameSettings struct {
	TaiCapPolicy      string `mapstructure:"taiCapPolicy"`      // UP_TO_4_POINTS / UP_TO_8_POINTS / NO_LIMIT
	DeadlinePolicy    string `mapstructure:"deadlinePolicy"`    // 响应窗口倒计时策略（仅作为提示下发）
	DeadlineSeconds   int    `mapstructure:"deadlineSeconds"`   // 响应窗口倒计时秒数
	FlowerReplacement bool   `mapstructure:"flowerReplacement"` // 是否补花
}

// Load 加载配置文件，并监听变更热更新日志级别
func Load(configFile string) error {
	if configFile == "" {
		return fmt.Errorf("配置文件路径为空")
	}
	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("配置文件不存在: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("TAI16")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("读取配置文件失败: %v", err)
	}
	if err := v.Unmarshal(&TableNodeConfig); err != nil {
		return fmt.Errorf("解析配置文件失败: %v", err)
	}

	v.OnConfigChange(func(in fsnotify.Event) {
		var next TableConfiguration
		if err := v.Unmarshal(&next); err != nil {
			log.Warn("配置热更新解析失败: %v", err)
			return
		}
		TableNodeConfig = next
		log.SetLevel(next.LogConf.Level)
		log.Info("配置热更新完成: %s", in.Name)
	})
	v.WatchConfig()

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serverType", "table")
	v.SetDefault("metricPort", 5300)
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("ws.addr", "0.0.0.0:7101")
	v.SetDefault("game.taiCapPolicy", "UP_TO_8_POINTS")
	v.SetDefault("game.deadlinePolicy", "FIXED")
	v.SetDefault("game.deadlineSeconds", 15)
	v.SetDefault("game.flowerReplacement", true)
}
