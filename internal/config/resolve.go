package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// prodConfigDir 生产环境配置目录
const prodConfigDir = "/etc/shop-admin"

// configDir 由 SetConfigDir 指定（shopctl --config-dir）
var configDir string

// SetConfigDir 指定配置目录，传空字符串恢复默认查找
func SetConfigDir(dir string) {
	configDir = dir
}

// dirSource 配置目录的来源，写入启动日志便于排查
type dirSource string

const (
	sourceFlag    dirSource = "flag"
	sourceEnv     dirSource = "CONFIG_DIR"
	sourceDefault dirSource = "default"
)

// searchDirs 返回 {env}.yaml 的搜索目录
//
//	SetConfigDir > CONFIG_DIR > prod: /etc/shop-admin, dev/test: configs 或 ../configs
func searchDirs(env Environment) ([]string, dirSource) {
	if configDir != "" {
		return []string{configDir}, sourceFlag
	}
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return []string{dir}, sourceEnv
	}
	if env == EnvProduction {
		return []string{prodConfigDir}, sourceDefault
	}
	return []string{"configs", filepath.Join("..", "configs")}, sourceDefault
}

// dotenvFiles dev/test 下依次尝试的 .env 文件
// 同名变量以先加载者为准，shell 环境变量始终优先
func dotenvFiles(env Environment) []string {
	names := []string{fmt.Sprintf(".env.%s", env), ".env"}
	var files []string
	for _, dir := range []string{".", ".."} {
		for _, name := range names {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files
}

// loadEnvFiles 加载 .env 凭据文件，返回实际加载的文件
// 生产环境凭据由部署环境注入，不读取 .env
func loadEnvFiles(env Environment) []string {
	if env == EnvProduction {
		return nil
	}
	var loaded []string
	for _, f := range dotenvFiles(env) {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded
}
