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
	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	UploadConfig struct {
		Backend   string // local | b2
		Dir       string
		B2Account string
		B2Key     string
		B2Bucket  string
	}

	PortalConfig struct {
		BaseURL      string
		PollInterval time.Duration
		SessionPath  string
	}

	Config struct {
		Env                       string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		SecretKey                 string
		Build                     string
		WorkDir                   string
		InstitutionalDomain       string
		FrontendBaseURL           string
		DefaultFromEmail          mail.Address
		SendgridApiKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Upload   UploadConfig
		Portal   PortalConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig reads the configuration from the environment.
// ENV selects the prefix (DEV by default; TEST, QA, PROD) and the optional config/.env.<env> file.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

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

	from, err := mail.ParseAddress(v.GetString("default_from_email"))
	if err != nil {
		log.Fatalf("config.default_from_email: %v", err)
	}

	return &Config{
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("test_mode"),
		AppName:                   v.GetString("app_name"),
		SecretKey:                 v.GetString("secret_key"),
		Build:                     v.GetString("build"),
		WorkDir:                   wd,
		InstitutionalDomain:       v.GetString("institutional_domain"),
		FrontendBaseURL:           v.GetString("frontend_base_url"),
		DefaultFromEmail:          *from,
		SendgridApiKey:            v.GetString("sendgrid_api_key"),
		RollbarToken:              v.GetString("rollbar_token"),
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout_delta"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debug_host"),
			ShutdownTimeout:           v.GetDuration("server.shutdown_timeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwt_expiration_delta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwt_refresh_expiration_delta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
			DisableTLS:    v.GetBool("database.disable_tls"),
		},
		Upload: UploadConfig{
			Backend:   v.GetString("upload.backend"),
			Dir:       v.GetString("upload.dir"),
			B2Account: v.GetString("upload.b2_account"),
			B2Key:     v.GetString("upload.b2_key"),
			B2Bucket:  v.GetString("upload.b2_bucket"),
		},
		Portal: PortalConfig{
			BaseURL:      v.GetString("portal.base_url"),
			PollInterval: v.GetDuration("portal.poll_interval"),
			SessionPath:  v.GetString("portal.session_path"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("app_name", "Ayudantias")
	v.SetDefault("secret_key", "k2v#9q!xw7m$e0r4t&yb1n+u8j(c5z)h3s=g6f@pa*ld%oi")
	v.SetDefault("build", "develop")
	v.SetDefault("institutional_domain", "@uteq.edu.ec")
	v.SetDefault("frontend_base_url", "http://localhost:3000")
	v.SetDefault("default_from_email", "Ayudantias <noreply@uteq.edu.ec>")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("password_reset_timeout_delta", 3*24*time.Hour)

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debug_host", "localhost:4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration_delta", 12*time.Hour)
	v.SetDefault("server.jwt_refresh_expiration_delta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ayudantias")
	v.SetDefault("database.user", "ayudantias")
	v.SetDefault("database.password", "ayudantias")
	v.SetDefault("database.admin_user", "postgres")
	v.SetDefault("database.admin_password", "postgres")
	v.SetDefault("database.disable_tls", true)

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.b2_account", "")
	v.SetDefault("upload.b2_key", "")
	v.SetDefault("upload.b2_bucket", "")

	v.SetDefault("portal.base_url", "http://localhost:8000")
	v.SetDefault("portal.poll_interval", 6*time.Second)
	v.SetDefault("portal.session_path", filepath.Join(os.TempDir(), "ayudantias", "session.db"))
}

// NewTestConfig returns a Config suitable for tests; it never reads the environment.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	from, _ := mail.ParseAddress(v.GetString("default_from_email"))
	return &Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   v.GetString("app_name"),
		SecretKey:                 v.GetString("secret_key"),
		Build:                     "test",
		InstitutionalDomain:       v.GetString("institutional_domain"),
		FrontendBaseURL:           v.GetString("frontend_base_url"),
		DefaultFromEmail:          *from,
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout_delta"),
		Server: ServerConfig{
			JWTExpirationDelta:        v.GetDuration("server.jwt_expiration_delta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwt_refresh_expiration_delta"),
		},
		Database: DatabaseConfig{Engine: "memory"},
		Upload:   UploadConfig{Backend: "local"},
		Portal: PortalConfig{
			PollInterval: v.GetDuration("portal.poll_interval"),
		},
	}
}
