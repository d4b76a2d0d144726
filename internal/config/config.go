package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string
	GinMode       string
	Port          string
	OpenAIAPIKey  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	UploadDir string

	BootstrapAdmin string

	Timezone      string
	StandardHours string
	ExtraHolidays []string

	LogLevel  string
	LogFormat string

	ReminderSchedule     string
	ExpiryScanSchedule   string
	WeeklyReportSchedule string
}

var defaults = map[string]any{
	"db_driver":              "mysql",
	"db_host":                "localhost",
	"db_port":                "3306",
	"db_user":                "ndtuser",
	"db_password":            "ndtpassword",
	"db_name":                "ndt_worklog",
	"db_path":                "ndt_worklog.db",
	"redis_host":             "localhost",
	"redis_port":             "6379",
	"session_store":          "redis",
	"session_secret":         "default-secret-key-change-me",
	"gin_mode":               "debug",
	"port":                   "8080",
	"openai_api_key":         "",
	"google_client_id":       "",
	"google_client_secret":   "",
	"google_callback_url":    "http://localhost:8080/api/auth/external/google/callback",
	"upload_dir":             "uploads",
	"bootstrap_admin":        "admin",
	"timezone":               "Europe/Rome",
	"standard_hours":         "8",
	"extra_holidays":         "",
	"log_level":              "info",
	"log_format":             "console",
	"reminder_schedule":      "0 18 * * 1-5",
	"expiry_scan_schedule":   "0 7 * * *",
	"weekly_report_schedule": "0 8 * * 1",
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that file. Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("config_file"); err != nil {
		return nil, err
	}
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	return &Config{
		DBDriver:             v.GetString("db_driver"),
		DBHost:               v.GetString("db_host"),
		DBPort:               v.GetString("db_port"),
		DBUser:               v.GetString("db_user"),
		DBPassword:           v.GetString("db_password"),
		DBName:               v.GetString("db_name"),
		DBPath:               v.GetString("db_path"),
		RedisHost:            v.GetString("redis_host"),
		RedisPort:            v.GetString("redis_port"),
		SessionStore:         v.GetString("session_store"),
		SessionSecret:        v.GetString("session_secret"),
		GinMode:              v.GetString("gin_mode"),
		Port:                 v.GetString("port"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		GoogleClientID:       v.GetString("google_client_id"),
		GoogleClientSecret:   v.GetString("google_client_secret"),
		GoogleCallbackURL:    v.GetString("google_callback_url"),
		UploadDir:            v.GetString("upload_dir"),
		BootstrapAdmin:       v.GetString("bootstrap_admin"),
		Timezone:             v.GetString("timezone"),
		StandardHours:        v.GetString("standard_hours"),
		ExtraHolidays:        splitList(v.GetString("extra_holidays")),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		ReminderSchedule:     v.GetString("reminder_schedule"),
		ExpiryScanSchedule:   v.GetString("expiry_scan_schedule"),
		WeeklyReportSchedule: v.GetString("weekly_report_schedule"),
	}, nil
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
