// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件或环境变量中（YAML 中不存储任何密码）。
//
// 配置路径确定策略：
//  1. SetConfigDir（--config-dir 命令行参数）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/shop-admin/
//     - dev/test → ./configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer APIServerConfig `yaml:"api_server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Auth      AuthConfig      `yaml:"auth"`
	Audit     AuditConfig     `yaml:"audit"`
	Media     MediaConfig     `yaml:"media"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Log       LogConfig       `yaml:"log"`
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port        string   `yaml:"port"`
	StaticDir   string   `yaml:"static_dir"`   // 店面静态文件目录，空则不提供
	CORSOrigins []string `yaml:"cors_origins"` // 允许的跨域来源，["*"] 表示全部
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" 或 "postgres"（默认 sqlite）
	Path     string `yaml:"path"`   // SQLite 文件路径，":memory:" 为内存库
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 DB_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig Redis 配置（仅用于日志清理的分布式锁，未启用时单实例运行）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`   // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
}

// MinIOConfig MinIO 对象存储配置
// 未启用时使用进程内存储（开发/测试）
type MinIOConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint"` // 例如 localhost:9000
	AccessKey    string `yaml:"-"`        // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey    string `yaml:"-"`        // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL       bool   `yaml:"use_ssl"`
	ImagesBucket string `yaml:"images_bucket"`
	VideosBucket string `yaml:"videos_bucket"`
}

// AuthConfig 认证配置
// 注意：JWTSecret/SuperAdmin* 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret          string        `yaml:"-"` // JWT_SECRET
	TokenTTL           time.Duration `yaml:"token_ttl"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
	SuperAdminEmail    string        `yaml:"-"` // SUPERADMIN_EMAIL
	SuperAdminPassword string        `yaml:"-"` // SUPERADMIN_PASSWORD
}

// AuditConfig 审计日志配置
type AuditConfig struct {
	RetentionDays int           `yaml:"retention_days"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// MediaConfig 媒体上传配置
type MediaConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// CatalogConfig 商品目录多语言配置
type CatalogConfig struct {
	Languages       []string `yaml:"languages"`
	DefaultLanguage string   `yaml:"default_language"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	DatabaseDriver string // "postgres" 或 "sqlite"
	DatabaseURL    string
	RedisURL       string // 空表示未启用
	APIServer      APIServerConfig
	MinIO          MinIOConfig
	Auth           AuthConfig
	Audit          AuditConfig
	Media          MediaConfig
	Catalog        CatalogConfig
	Log            LogConfig
	ConfigFilePath string   // 实际加载的配置文件路径
	ConfigSource   string   // 配置目录来源：flag / CONFIG_DIR / default
	EnvFiles       []string // 已加载的 .env 文件
}

// Defaults 代码内置默认值
func Defaults() YAMLConfig {
	return YAMLConfig{
		APIServer: APIServerConfig{Port: "8080", CORSOrigins: []string{"*"}},
		Database:  DatabaseConfig{Driver: "sqlite", Path: "shop.db", Host: "localhost", Port: 5432, User: "shop", Name: "shop", SSLMode: "disable"},
		Redis:     RedisConfig{Host: "localhost", Port: 6379},
		MinIO:     MinIOConfig{Endpoint: "localhost:9000", ImagesBucket: "images", VideosBucket: "videos"},
		Auth:      AuthConfig{TokenTTL: 168 * time.Hour, BcryptCost: 12},
		Audit:     AuditConfig{RetentionDays: 90, SweepInterval: time.Hour},
		Media:     MediaConfig{MaxUploadBytes: 10 << 20},
		Catalog:   CatalogConfig{Languages: []string{"en"}, DefaultLanguage: "en"},
		Log:       LogConfig{Level: "info", Format: "text", Output: "stdout"},
	}
}
