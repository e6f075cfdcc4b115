package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// devJWTSecret 非生产环境未设置 JWT_SECRET 时使用
const devJWTSecret = "dev-only-jwt-secret-change-me"

// yamlConfigInternal 内部包装，记录配置文件来源（不参与 YAML 序列化）
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
	source     dirSource
}

// Load 加载配置
//  1. 加载 .env.{env}（敏感信息）
//  2. 加载 {env}.yaml 覆盖默认值
//  3. 环境变量覆盖
//  4. 校验
func Load() (*Config, error) {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	envFiles := loadEnvFiles(env)

	yc, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}
	cfg, err := build(env, yc)
	if err != nil {
		return nil, err
	}
	cfg.EnvFiles = envFiles
	return cfg, nil
}

// build 由 YAML 配置 + 环境变量构建最终配置
func build(env Environment, yc *yamlConfigInternal) (*Config, error) {
	y := yc.YAMLConfig

	// 凭据只从环境变量读取
	y.Database.Password = firstEnv("DB_PASSWORD", "POSTGRES_PASSWORD")
	y.Redis.Password = os.Getenv("REDIS_PASSWORD")
	y.MinIO.AccessKey = firstEnv("MINIO_ROOT_USER", "MINIO_ACCESS_KEY")
	y.MinIO.SecretKey = firstEnv("MINIO_ROOT_PASSWORD", "MINIO_SECRET_KEY")
	y.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	y.Auth.SuperAdminEmail = os.Getenv("SUPERADMIN_EMAIL")
	y.Auth.SuperAdminPassword = os.Getenv("SUPERADMIN_PASSWORD")

	// 非凭据的环境变量覆盖
	if v := firstEnv("API_PORT", "PORT"); v != "" {
		y.APIServer.Port = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		y.APIServer.StaticDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		y.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		y.Log.Format = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		y.MinIO.Endpoint = v
		y.MinIO.Enabled = true
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		y.Redis.URL = v
		y.Redis.Enabled = true
	}
	if v := os.Getenv("AUDIT_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUDIT_RETENTION_DAYS %q: %w", v, err)
		}
		y.Audit.RetentionDays = n
	}

	databaseURL := os.Getenv("DATABASE_URL")
	driver := detectDatabaseDriver(firstEnv("DB_DRIVER", "DATABASE_DRIVER"), y.Database.Driver, databaseURL)
	y.Database.Driver = driver
	if databaseURL == "" {
		databaseURL = buildDatabaseURL(y.Database, y.Database.Password)
	}

	cfg := &Config{
		Env:            env,
		DatabaseDriver: driver,
		DatabaseURL:    databaseURL,
		APIServer:      y.APIServer,
		MinIO:          y.MinIO,
		Auth:           y.Auth,
		Audit:          y.Audit,
		Media:          y.Media,
		Catalog:        y.Catalog,
		Log:            y.Log,
		ConfigFilePath: yc.loadedFrom,
		ConfigSource:   string(yc.source),
	}
	if y.Redis.Enabled {
		cfg.RedisURL = buildRedisURL(y.Redis)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig(env Environment) (*yamlConfigInternal, error) {
	dirs, source := searchDirs(env)
	cfg := &yamlConfigInternal{YAMLConfig: Defaults(), source: source}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range dirs {
		path := filepath.Join(base, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.loadedFrom = path
		break
	}
	return cfg, nil
}

// validate 校验并填充默认值
func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if c.Env == EnvProduction {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = devJWTSecret
	}
	d := Defaults()
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = d.Auth.TokenTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = d.Auth.BcryptCost
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = d.Audit.RetentionDays
	}
	if c.Audit.SweepInterval <= 0 {
		c.Audit.SweepInterval = d.Audit.SweepInterval
	}
	if c.Media.MaxUploadBytes <= 0 {
		c.Media.MaxUploadBytes = d.Media.MaxUploadBytes
	}
	if c.MinIO.ImagesBucket == "" {
		c.MinIO.ImagesBucket = d.MinIO.ImagesBucket
	}
	if c.MinIO.VideosBucket == "" {
		c.MinIO.VideosBucket = d.MinIO.VideosBucket
	}
	if c.MinIO.Enabled && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		return fmt.Errorf("minio enabled but MINIO_ROOT_USER / MINIO_ROOT_PASSWORD not set")
	}

	if len(c.Catalog.Languages) == 0 {
		c.Catalog.Languages = d.Catalog.Languages
	}
	for i, l := range c.Catalog.Languages {
		c.Catalog.Languages[i] = strings.ToLower(strings.TrimSpace(l))
	}
	if c.Catalog.DefaultLanguage == "" {
		c.Catalog.DefaultLanguage = c.Catalog.Languages[0]
	}
	c.Catalog.DefaultLanguage = strings.ToLower(c.Catalog.DefaultLanguage)
	if !c.Catalog.Supports(c.Catalog.DefaultLanguage) {
		return fmt.Errorf("default language %q is not in catalog.languages %v",
			c.Catalog.DefaultLanguage, c.Catalog.Languages)
	}
	return nil
}

// Supports 语言是否在支持列表中
func (c CatalogConfig) Supports(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
