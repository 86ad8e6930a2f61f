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
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Host            string
		Address         string
		DebugAddress    string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	sessionConfig struct {
		CookieName string
		Lifetime   time.Duration
	}

	uploadsConfig struct {
		Driver             string // local | gcs
		RootDir            string
		MaxSize            string // echo BodyLimit format, e.g. 512M
		GCSBucket          string
		GCSCredentialsFile string
	}

	adminConfig struct {
		Username string
		Password string
	}

	Config struct {
		Env             string
		Build           string
		AppName         string
		WorkDir         string
		Debug           bool
		TestMode        bool
		SecretKey       string
		FrontendBaseURL string
		RollbarToken    string
		SendgridApiKey  string

		defaultFromEmail string

		Server   serverConfig
		Database databaseConfig
		Session  sessionConfig
		Uploads  uploadsConfig
		Admin    adminConfig
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	return *addr
}

func (c databaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the configuration from `config/.env.<env>` (if present) and the environment.
// Every key can be overridden with an env var prefixed by the current env, e.g. DEV_DBHOST.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Shule")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k3v#7u!x0q@p4m%wz^s9d&t2(hb)e8r=ny5c*j6g+fa1l$o")
	v.SetDefault("defaultFromEmail", "Shule <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugAddress", ":4000")
	v.SetDefault("serverReadTimeout", 30*time.Second)
	v.SetDefault("serverWriteTimeout", 60*time.Second)
	v.SetDefault("serverShutdownTimeout", 10*time.Second)
	v.SetDefault("serverDisableReqLogs", false)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "shule")
	v.SetDefault("dbUser", "shule")
	v.SetDefault("dbPassword", "shule")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("sessionCookieName", "shule_session")
	v.SetDefault("sessionLifetime", 24*time.Hour)

	v.SetDefault("uploadsDriver", "local")
	v.SetDefault("uploadsRootDir", filepath.Join("static", "uploads"))
	v.SetDefault("uploadsMaxSize", "512M")
	v.SetDefault("uploadsGCSBucket", "")
	v.SetDefault("uploadsGCSCredentialsFile", "")

	v.SetDefault("adminUsername", "admin")
	v.SetDefault("adminPassword", "admin")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		WorkDir:          wd,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: serverConfig{
			Host:            v.GetString("serverHost"),
			Address:         v.GetString("serverAddress"),
			DebugAddress:    v.GetString("serverDebugAddress"),
			ReadTimeout:     v.GetDuration("serverReadTimeout"),
			WriteTimeout:    v.GetDuration("serverWriteTimeout"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:  v.GetBool("serverDisableReqLogs"),
		},
		Database: databaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Session: sessionConfig{
			CookieName: v.GetString("sessionCookieName"),
			Lifetime:   v.GetDuration("sessionLifetime"),
		},
		Uploads: uploadsConfig{
			Driver:             v.GetString("uploadsDriver"),
			RootDir:            v.GetString("uploadsRootDir"),
			MaxSize:            v.GetString("uploadsMaxSize"),
			GCSBucket:          v.GetString("uploadsGCSBucket"),
			GCSCredentialsFile: v.GetString("uploadsGCSCredentialsFile"),
		},
		Admin: adminConfig{
			Username: v.GetString("adminUsername"),
			Password: v.GetString("adminPassword"),
		},
	}
}
