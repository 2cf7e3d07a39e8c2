package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Addr               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// PlanningConfig configures the sprint-planning service client and the
	// plan parameters passed on every run.
	PlanningConfig struct {
		URL          string
		Timeout      time.Duration
		ProjectWeeks int
		SprintWeeks  int
	}

	TrelloConfig struct {
		BaseURL string
		Key     string
		Token   string
		Timeout time.Duration
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Planning PlanningConfig
		Trello   TrelloConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Miradi")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w#2dk$7pbx(q&0e5m!v-u8^j4hz+1r9y=c6f3a%snt_g)ol*iq")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugHost", "localhost:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "miradi")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.disableTls", true)
	conf.SetDefault("planning.timeout", 60*time.Second)
	conf.SetDefault("planning.projectWeeks", 12)
	conf.SetDefault("planning.sprintWeeks", 2)
	conf.SetDefault("trello.baseUrl", "https://api.trello.com")
	conf.SetDefault("trello.timeout", 30*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	c := &Config{
		Env:             env,
		Build:           conf.GetString("build"),
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		AppName:         conf.GetString("appName"),
		SecretKey:       conf.GetString("secretKey"),
		FrontendBaseURL: conf.GetString("frontendBaseUrl"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("appName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		SendgridApiKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			Addr:               conf.GetString("server.addr"),
			DebugHost:          conf.GetString("server.debugHost"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTls"),
		},
		Planning: PlanningConfig{
			URL:          conf.GetString("planning.url"),
			Timeout:      conf.GetDuration("planning.timeout"),
			ProjectWeeks: conf.GetInt("planning.projectWeeks"),
			SprintWeeks:  conf.GetInt("planning.sprintWeeks"),
		},
		Trello: TrelloConfig{
			BaseURL: conf.GetString("trello.baseUrl"),
			Key:     conf.GetString("trello.key"),
			Token:   conf.GetString("trello.token"),
			Timeout: conf.GetDuration("trello.timeout"),
		},
	}

	if err := c.check(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func (c *Config) check() error {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.AppName, "appName"),
		vala.StringNotEmpty(c.SecretKey, "secretKey"),
		vala.StringNotEmpty(c.Server.Addr, "server.addr"),
		vala.StringNotEmpty(c.Database.Engine, "database.engine"),
		vala.StringNotEmpty(c.Database.Name, "database.name"),
		vala.StringNotEmpty(c.Trello.BaseURL, "trello.baseUrl"),
	).Check()
	if err != nil {
		return err
	}
	if c.Planning.ProjectWeeks <= 0 {
		return errPlanningWeeks
	}
	if c.Planning.SprintWeeks <= 0 || c.Planning.SprintWeeks > c.Planning.ProjectWeeks {
		return errSprintWeeks
	}
	return nil
}
