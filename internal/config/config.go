package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/IRT-SystemX/bcm-notifier/notifier"
)

// ConfigurationError reports a required setting that is absent or unusable.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("configuration %s is required", e.Key)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type Config struct {
	Mode         string
	URL          string
	API          string
	Path         string
	OrgUser      string
	Port         int
	ProjectID    string
	AppDomain    string
	NotifyURL    string
	NotifySecret string
	KeysURL      string
	Origin       string
	Interval     time.Duration
	ChainID      int64
	Subscribers  string
	Broadcast    bool
	Metrics      bool
}

var modes = [...]string{"eth", "rpc", "hlf"}

// Load reads the settings bound into v. The project id and the app domain
// are required.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Mode:         v.GetString("mode"),
		URL:          v.GetString("url"),
		API:          v.GetString("api"),
		Path:         v.GetString("path"),
		OrgUser:      v.GetString("orgUser"),
		Port:         v.GetInt("port"),
		ProjectID:    v.GetString("projectId"),
		AppDomain:    v.GetString("appDomain"),
		NotifyURL:    v.GetString("notifyUrl"),
		NotifySecret: v.GetString("notifySecret"),
		KeysURL:      v.GetString("keysUrl"),
		Origin:       v.GetString("origin"),
		Interval:     v.GetDuration("interval"),
		ChainID:      v.GetInt64("chainId"),
		Subscribers:  v.GetString("subscribers"),
		Broadcast:    v.GetBool("broadcast"),
		Metrics:      v.GetBool("metrics"),
	}
	if cfg.ProjectID == "" {
		return nil, &ConfigurationError{Key: "PROJECT_ID"}
	}
	if cfg.AppDomain == "" {
		return nil, &ConfigurationError{Key: "APP_DOMAIN"}
	}
	if cfg.NotifyURL == "" {
		return nil, &ConfigurationError{Key: "notifyUrl"}
	}
	if !validMode(cfg.Mode) {
		return nil, &ConfigurationError{Key: "mode", Err: fmt.Errorf("unknown mode %q", cfg.Mode)}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = notifier.DefaultInterval
	}
	if cfg.ChainID <= 0 {
		cfg.ChainID = 1
	}
	return cfg, nil
}

func validMode(mode string) bool {
	for _, m := range modes {
		if mode == m {
			return true
		}
	}
	return false
}

type subscriberFile struct {
	Subscribers []string `yaml:"subscribers"`
}

// LoadSubscribers reads the broadcast list. A missing file yields no
// subscribers.
func LoadSubscribers(pathFile string) ([]notifier.Recipient, error) {
	if pathFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(pathFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &ConfigurationError{Key: "subscribers", Err: err}
	}
	raw := subscriberFile{}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Key: "subscribers", Err: err}
	}
	output := make([]notifier.Recipient, 0, len(raw.Subscribers))
	for _, account := range raw.Subscribers {
		if account != "" {
			output = append(output, notifier.Recipient(account))
		}
	}
	return output, nil
}
