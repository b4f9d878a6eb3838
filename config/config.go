// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type AuthConfig struct {
	SessionSecret   string        `mapstructure:"sessionSecret"`
	SessionTTL      time.Duration `mapstructure:"sessionTTL"`
	CookieName      string        `mapstructure:"cookieName"`
	DashboardPrefix string        `mapstructure:"dashboardPrefix"`
	// StrictGate makes the page gate open the token instead of only checking the cookie.
	StrictGate bool `mapstructure:"strictGate"`
}

type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
	// OfficeName heads the printed certificate.
	OfficeName string `mapstructure:"officeName"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether certificate uploads should go to S3.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type SeedConfig struct {
	AdminUsername  string `mapstructure:"adminUsername"`
	AdminPassword  string `mapstructure:"adminPassword"`
	AdminFirstName string `mapstructure:"adminFirstName"`
	AdminLastName  string `mapstructure:"adminLastName"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// --- Root config ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Auth   AuthConfig   `mapstructure:"auth"`
	App    AppConfig    `mapstructure:"app"`
	S3     S3Config     `mapstructure:"s3"`
	Seed   SeedConfig   `mapstructure:"seed"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Log    LogConfig    `mapstructure:"log"`

	location *time.Location
}

// IsProduction decides the Secure attribute of the session cookie.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// Location is the time zone used for every "today" and "this month" computation.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("mongo.dbName", "fsic")
	v.SetDefault("auth.sessionTTL", "168h")
	v.SetDefault("auth.cookieName", "authToken")
	v.SetDefault("auth.dashboardPrefix", "/dashboard")
	v.SetDefault("app.timezone", "Asia/Manila")
	v.SetDefault("log.level", "info")

	v.AutomaticEnv()

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.env", "APP_ENV")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.dbName", "MONGO_DBNAME")
	v.BindEnv("auth.sessionSecret", "SESSION_SECRET")
	v.BindEnv("auth.sessionTTL", "SESSION_TTL")
	v.BindEnv("auth.cookieName", "SESSION_COOKIE_NAME")
	v.BindEnv("auth.strictGate", "AUTH_STRICT_GATE")
	v.BindEnv("app.timezone", "APP_TIMEZONE")
	v.BindEnv("app.officeName", "APP_OFFICE_NAME")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("seed.adminUsername", "SEED_ADMIN_USERNAME")
	v.BindEnv("seed.adminPassword", "SEED_ADMIN_PASSWORD")
	v.BindEnv("seed.adminFirstName", "SEED_ADMIN_FIRST_NAME")
	v.BindEnv("seed.adminLastName", "SEED_ADMIN_LAST_NAME")
	v.BindEnv("cors.allowedOrigins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("log.level", "LOG_LEVEL")

	// Without config.yaml only the environment is used.
	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	// CORS_ALLOWED_ORIGINS arrives as one comma separated string.
	config.CORS.AllowedOrigins = splitList(strings.Join(config.CORS.AllowedOrigins, ","))

	prefix := "/" + strings.Trim(config.Auth.DashboardPrefix, "/")
	if prefix == "/" {
		err = errors.New("auth.dashboardPrefix must not be the site root")
		return
	}
	config.Auth.DashboardPrefix = prefix

	if config.Auth.SessionSecret == "" {
		err = errors.New("auth.sessionSecret (SESSION_SECRET) is required")
		return
	}

	loc, locErr := time.LoadLocation(config.App.Timezone)
	if locErr != nil {
		err = fmt.Errorf("invalid app.timezone %q: %w", config.App.Timezone, locErr)
		return
	}
	config.location = loc

	return
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
