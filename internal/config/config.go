package config

import (
	"errors"
	"strings"
	"time"

	"folioauth/params"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr       = ":3000"
	DefaultTwoFactorIssuer  = "Portfolio Admin"
	DefaultWindowSteps      = 2
	DefaultStepSeconds      = 30
	DefaultCodeDigits       = 6
	DefaultBackupCodeCount  = 10
	DefaultBackupCodeLength = 8
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	TLS      bool   `mapstructure:"tls"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`
}

type MailConfig struct {
	Backend string     `mapstructure:"backend"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

// TwoFactorConfig carries the TOTP tunables. The defaults mirror what every
// common authenticator app expects: SHA1, 6 digits, 30 second steps.
type TwoFactorConfig struct {
	Issuer           string `mapstructure:"issuer"`
	WindowSteps      uint   `mapstructure:"windowSteps"`
	StepSeconds      uint   `mapstructure:"stepSeconds"`
	CodeDigits       int    `mapstructure:"codeDigits"`
	BackupCodeCount  int    `mapstructure:"backupCodeCount"`
	BackupCodeLength int    `mapstructure:"backupCodeLength"`
}

type TokenConfig struct {
	Secret string        `mapstructure:"secret"`
	MaxAge time.Duration `mapstructure:"maxAge"`
}

type Config struct {
	Debug        bool            `mapstructure:"debug"`
	SiteName     string          `mapstructure:"siteName"`
	BaseURL      string          `mapstructure:"baseURL"`
	MasterKey    string          `mapstructure:"masterKey"`
	ListenAddr   string          `mapstructure:"listenAddr"`
	TemplateDir  string          `mapstructure:"templateDir"`
	AllowOrigins []string        `mapstructure:"allowOrigins"`
	MySQL        MySQLConfig     `mapstructure:"mysql"`
	Redis        RedisConfig     `mapstructure:"redis"`
	Mail         MailConfig      `mapstructure:"mail"`
	TwoFactor    TwoFactorConfig `mapstructure:"twoFactor"`
	Token        TokenConfig     `mapstructure:"token"`
}

func (c *Config) Sanitize() error {
	if c.MasterKey == "" {
		return errors.New("missing masterKey")
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.TwoFactor.Issuer == "" {
		c.TwoFactor.Issuer = c.SiteName
	}
	if c.TwoFactor.Issuer == "" {
		c.TwoFactor.Issuer = DefaultTwoFactorIssuer
	}
	if c.TwoFactor.WindowSteps == 0 {
		c.TwoFactor.WindowSteps = DefaultWindowSteps
	}
	if c.TwoFactor.StepSeconds == 0 {
		c.TwoFactor.StepSeconds = DefaultStepSeconds
	}
	if c.TwoFactor.CodeDigits == 0 {
		c.TwoFactor.CodeDigits = DefaultCodeDigits
	}
	if c.TwoFactor.BackupCodeCount == 0 {
		c.TwoFactor.BackupCodeCount = DefaultBackupCodeCount
	}
	if c.TwoFactor.BackupCodeLength == 0 {
		c.TwoFactor.BackupCodeLength = DefaultBackupCodeLength
	}
	if c.Token.Secret == "" {
		c.Token.Secret = c.MasterKey
	}
	if c.Token.MaxAge == 0 {
		c.Token.MaxAge = params.AccessTokenMaxAge
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
