package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		// Timezone is the institution's timezone. All calendar-day
		// boundaries (schedule dates, task due days, range queries) are
		// evaluated in this single location, never in a viewer's zone.
		Timezone *time.Location

		Server   ServerConfig
		Database DatabaseConfig
		Chat     ChatConfig
		Notifier NotifierConfig

		SendgridAPIKey string
		RollbarToken   string
	}

	ServerConfig struct {
		Host            string
		APIAddr         string
		DebugAddr       string
		ShutdownTimeout time.Duration
		RateLimit       float64 // requests per second, per IP
		RateBurst       int
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	ChatConfig struct {
		ServiceURL string
		Timeout    time.Duration
	}

	NotifierConfig struct {
		Enabled       bool
		Interval      time.Duration
		DueSoonWindow time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "ClassInfo")
	conf.SetDefault("frontendBaseUrl", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("timezone", "") // empty: server's local zone

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.apiAddr", ":8000")
	conf.SetDefault("server.debugAddr", ":8001")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.rateLimit", 20.0)
	conf.SetDefault("server.rateBurst", 50)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "classinfo")
	conf.SetDefault("database.user", "classinfo")
	conf.SetDefault("database.password", "classinfo")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("chat.serviceUrl", "http://localhost:5002")
	conf.SetDefault("chat.timeout", 30*time.Second)

	conf.SetDefault("notifier.enabled", true)
	conf.SetDefault("notifier.interval", time.Minute)
	conf.SetDefault("notifier.dueSoonWindow", 24*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	tz := time.Local
	if name := conf.GetString("timezone"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Fatalf("config.time.LoadLocation(%s): %v", name, err)
		}
		tz = loc
	}

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		Env:      env,
		Build:    conf.GetString("build"),

		AppName:         conf.GetString("appName"),
		FrontendBaseURL: conf.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("appName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		Timezone: tz,

		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			APIAddr:         conf.GetString("server.apiAddr"),
			DebugAddr:       conf.GetString("server.debugAddr"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			RateLimit:       conf.GetFloat64("server.rateLimit"),
			RateBurst:       conf.GetInt("server.rateBurst"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Chat: ChatConfig{
			ServiceURL: conf.GetString("chat.serviceUrl"),
			Timeout:    conf.GetDuration("chat.timeout"),
		},
		Notifier: NotifierConfig{
			Enabled:       conf.GetBool("notifier.enabled"),
			Interval:      conf.GetDuration("notifier.interval"),
			DueSoonWindow: conf.GetDuration("notifier.dueSoonWindow"),
		},

		SendgridAPIKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
	}
}

// Getwd returns the module root directory. Tests run from their package
// directory; walk up until go.mod is found.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}
	for dir := wd; dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
	}
	return wd
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (%s build %s)", c.AppName, c.Env, c.Build)
}
