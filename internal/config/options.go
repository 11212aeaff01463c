package config

import "time"

const (
	defaultLogFile           = "shelfdesk.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8080
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/shelfdesk"
	defaultDSN               = defaultData + "/shelfdesk.db"
	defaultWorkerPoolSize    = 2
	defaultFeePerDayCents    = 10
	defaultDayCount          = DayCountCalendar
	defaultAccessTokenTTL    = 8 * time.Hour
	defaultSigninRate        = 1.0
	defaultSigninBurst       = 5
	defaultMaxCheckoutItems  = 5
)

const (
	// DayCountCalendar counts real calendar days between two dates.
	DayCountCalendar = "calendar"
	// DayCountLegacy reproduces the historical 365*year+dayOfYear arithmetic.
	DayCountLegacy = "legacy"
)

// StaffAccount is a clerk or librarian allowed to sign in to the API.
type StaffAccount struct {
	Username     string `mapstructure:"username"`
	Role         string `mapstructure:"role"`
	PasswordHash string `mapstructure:"password_hash"`
}

// viper decodes through mapstructure, so the field tags must be mapstructure tags.
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size in megabytes of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database file
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data
	Data           string `mapstructure:"data"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`

	// FeePerDayCents is the fine charged for every day a copy is returned late.
	FeePerDayCents int64 `mapstructure:"fee_per_day_cents"`
	// DayCount selects how days late are counted, "calendar" or "legacy".
	DayCount string `mapstructure:"day_count"`
	// MaxCheckoutItems caps the number of books in one checkout request.
	MaxCheckoutItems int `mapstructure:"max_checkout_items"`

	// For the API
	JWTSecret      string         `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration  `mapstructure:"access_token_ttl"`
	SigninRate     float64        `mapstructure:"signin_rate"`
	SigninBurst    int            `mapstructure:"signin_burst"`
	// TrustedProxies are the peer addresses whose X-Forwarded-For and
	// X-Real-Ip headers are believed.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	Staff          []StaffAccount `mapstructure:"staff"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:           defaultLogFile,
		LogLevel:          defaultLogLevel,
		LogFileMaxSize:    defaultLogFileMaxSize,
		LogFileMaxBackups: defaultLogFileMaxBackups,
		LogFileMaxAge:     defaultLogFileMaxAge,
		LogCompress:       defaultLogCompress,
		DSN:               defaultDSN,
		Port:              defaultPort,
		Host:              defaultHost,
		Data:              defaultData,
		WorkerPoolSize:    defaultWorkerPoolSize,
		FeePerDayCents:    defaultFeePerDayCents,
		DayCount:          defaultDayCount,
		MaxCheckoutItems:  defaultMaxCheckoutItems,
		AccessTokenTTL:    defaultAccessTokenTTL,
		SigninRate:        defaultSigninRate,
		SigninBurst:       defaultSigninBurst,
	}
	return Opts
}

// defaults maps every viper key to its default so AutomaticEnv can see it.
func defaults() map[string]any {
	return map[string]any{
		"log_file":             defaultLogFile,
		"log_level":            defaultLogLevel,
		"log_file_max_size":    defaultLogFileMaxSize,
		"log_file_max_backups": defaultLogFileMaxBackups,
		"log_file_max_age":     defaultLogFileMaxAge,
		"log_compress":         defaultLogCompress,
		"dsn_uri":              "",
		"port":                 defaultPort,
		"host":                 defaultHost,
		"data":                 defaultData,
		"worker_pool_size":     defaultWorkerPoolSize,
		"fee_per_day_cents":    defaultFeePerDayCents,
		"day_count":            defaultDayCount,
		"max_checkout_items":   defaultMaxCheckoutItems,
		"jwt_secret":           "",
		"access_token_ttl":     defaultAccessTokenTTL,
		"signin_rate":          defaultSigninRate,
		"signin_burst":         defaultSigninBurst,
		"trusted_proxies":      []string{},
	}
}
