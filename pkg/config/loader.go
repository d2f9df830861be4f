package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var configPath string

// Load 加载配置到 target
// 优先级：1. 命令行 --config 指定的文件 > 2. 环境变量 HALOLAB_* > 3. 配置文件 > 4. 零值
func Load(target any) error {
	// 注册命令行参数
	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	v := viper.New()
	v.SetEnvPrefix("HALOLAB")
	v.AutomaticEnv()
	// 环境变量中的 "_" 映射为配置中的 "."，例如 HALOLAB_LOG_LEVEL -> log.level
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// 确定配置文件路径：Flag 显式指定 > 环境变量 HALOLAB_CONFIG > 默认路径
	finalPath := configPath
	if !pflag.CommandLine.Changed("config") {
		if envConfig := os.Getenv("HALOLAB_CONFIG"); envConfig != "" {
			finalPath = envConfig
		}
	}

	if _, err := os.Stat(finalPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrConfigFileNotFound, finalPath)
	}

	v.SetConfigFile(finalPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// LoadFile 从指定路径加载配置（不读取命令行参数，测试和工具使用）
func LoadFile(path string, target any) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
