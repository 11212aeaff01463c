package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "SHELFDESK"

var Opts *Options

// Load builds the options from defaults, an optional config file, a .env file
// in the working directory and SHELFDESK_* environment variables, in that order
// of increasing precedence.
func Load(file string) (*Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "unable to read .env file")
	}

	v := newViper()
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, errors.Wrapf(err, "unable to access config file %s", file)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config file %s", file)
		}
	}

	opts := GetDefaultOptions()
	if err := v.Unmarshal(opts); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := resolveData(opts); err != nil {
		return nil, err
	}
	Opts = opts
	return Opts, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Validate rejects option values the circulation rules cannot work with.
func (o *Options) Validate() error {
	if o.FeePerDayCents < 0 {
		return errors.Errorf("fee_per_day_cents must not be negative, got %d", o.FeePerDayCents)
	}
	switch o.DayCount {
	case DayCountCalendar, DayCountLegacy:
	default:
		return errors.Errorf("unsupported day_count %q", o.DayCount)
	}
	if o.Port <= 0 || o.Port > 65535 {
		return errors.Errorf("invalid port %d", o.Port)
	}
	if o.WorkerPoolSize < 1 {
		return errors.Errorf("worker_pool_size must be at least 1, got %d", o.WorkerPoolSize)
	}
	if o.MaxCheckoutItems < 1 {
		return errors.Errorf("max_checkout_items must be at least 1, got %d", o.MaxCheckoutItems)
	}
	for _, s := range o.Staff {
		if s.Username == "" {
			return errors.New("staff account without username")
		}
		if s.Role != "clerk" && s.Role != "librarian" {
			return errors.Errorf("staff account %s has unsupported role %q", s.Username, s.Role)
		}
	}
	return nil
}

// FindStaff returns the staff account with the given username.
func (o *Options) FindStaff(username string) (StaffAccount, bool) {
	for _, s := range o.Staff {
		if s.Username == username {
			return s, true
		}
	}
	return StaffAccount{}, false
}

func resolveData(opts *Options) error {
	dataDir, err := checkDataDir(opts.Data)
	if err != nil {
		return err
	}
	opts.Data = dataDir
	if opts.DSN == "" || opts.DSN == defaultDSN {
		opts.DSN = filepath.Join(opts.Data, "shelfdesk.db")
	}
	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err == nil {
		return dataDir, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}

	err := os.MkdirAll(dataDir, 0755)
	if err == nil {
		return dataDir, nil
	}
	if dataDir != defaultData || !errors.Is(err, os.ErrPermission) {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}

	// Permission denied on the default location, fall back to the user's home.
	currentUser, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to get current user")
	}
	if currentUser.HomeDir == "" {
		return "", errors.New("unable to get home directory")
	}
	homeData := filepath.Join(currentUser.HomeDir, ".shelfdesk")
	if err := os.MkdirAll(homeData, 0755); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", homeData)
	}
	fmt.Fprintln(os.Stderr, "Data folder created in user's home directory:", homeData)
	return homeData, nil
}
