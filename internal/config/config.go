package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Config is the validated runtime configuration. It is loaded once at
// startup and treated as immutable for the lifetime of the run.
type Config struct {
	// Matching rules
	Keywords            []string          `koanf:"keywords"`
	ExclusionKeywords   []string          `koanf:"exclusion_keywords"`
	EnableRegexKeywords bool              `koanf:"enable_regex_keywords"`
	FlairPriority       map[string]string `koanf:"flair_priority"`
	MinPostScore        int               `koanf:"min_post_score"`

	// Sources
	Subreddits        []string `koanf:"subreddits"`
	LenientSubreddits []string `koanf:"lenient_subreddits"`
	DaysToCheck       int      `koanf:"days_to_check"`
	MaxPostsPerRun    int      `koanf:"max_posts_per_run"`
	RedditUserAgent   string   `koanf:"reddit_user_agent"`

	// Author quality gate
	EnableUserFiltering bool `koanf:"enable_user_filtering"`
	MinUserKarma        int  `koanf:"min_user_karma"`
	MinAccountAgeDays   int  `koanf:"min_account_age_days"`

	// Similarity dedup
	EnableDeduplication bool    `koanf:"enable_deduplication"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// Scheduling and storage
	CheckIntervalMinutes int    `koanf:"check_interval_minutes"`
	SeenRetainDays       int    `koanf:"seen_retain_days"`
	StoragePath          string `koanf:"storage_path"`
	HTTPPort             string `koanf:"http_port"`

	// Email channel
	SMTPServer        string `koanf:"smtp_server"`
	SMTPPort          int    `koanf:"smtp_port"`
	EmailUser         string `koanf:"email_user"`
	EmailPassword     string `koanf:"email_password"`
	NotificationEmail string `koanf:"notification_email"`

	// Optional channels
	TelegramBotToken  string `koanf:"telegram_bot_token"`
	TelegramChatID    string `koanf:"telegram_chat_id"`
	DiscordWebhookURL string `koanf:"discord_webhook_url"`
	SlackWebhookURL   string `koanf:"slack_webhook_url"`
	IFTTTWebhookKey   string `koanf:"ifttt_webhook_key"`
	IFTTTEventName    string `koanf:"ifttt_event_name"`
	PushoverUserKey   string `koanf:"pushover_user_key"`
	PushoverAPIToken  string `koanf:"pushover_api_token"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	// Use lo.Find to find the first existing config file
	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Load environment variables (they override config file values)
	// Convert NOTIFICATION_EMAIL -> notification_email
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	setDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// List-valued options may arrive as comma-separated strings from env
	// vars or as slices from config files
	cfg.Keywords = stringList(k, "keywords")
	cfg.ExclusionKeywords = stringList(k, "exclusion_keywords")
	cfg.Subreddits = stringList(k, "subreddits")
	cfg.LenientSubreddits = stringList(k, "lenient_subreddits")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"keywords":               "free ticket,cheap ticket,giveaway,free entry,discount",
		"exclusion_keywords":     "sold,taken,gone,closed,no longer available,found",
		"subreddits":             "glasgow,glasgowmarket",
		"lenient_subreddits":     "glasgowmarket",
		"days_to_check":          7,
		"max_posts_per_run":      50,
		"reddit_user_agent":      "ticketwatch/1.0",
		"min_post_score":         0,
		"min_user_karma":         10,
		"min_account_age_days":   7,
		"enable_user_filtering":  true,
		"enable_deduplication":   true,
		"similarity_threshold":   0.8,
		"check_interval_minutes": 15,
		"seen_retain_days":       7,
		"storage_path":           "./data",
		"http_port":              "8080",
		"smtp_server":            "smtp.gmail.com",
		"smtp_port":              587,
		"ifttt_event_name":       "reddit_match",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
	if !k.Exists("flair_priority") {
		k.Set("flair_priority", map[string]string{
			"glasgow": "Ticket share. No adverts, free tickets only",
		})
	}
}

func (c *Config) validate() error {
	if c.EmailUser == "" || c.EmailPassword == "" || c.NotificationEmail == "" {
		return ErrMissingEmailConfig
	}
	if len(c.Keywords) == 0 {
		return ErrNoKeywords
	}
	if len(c.Subreddits) == 0 {
		return ErrNoSubreddits
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}
	// An explicit zero would panic time.NewTicker in watch mode
	if c.CheckIntervalMinutes <= 0 {
		return ErrInvalidInterval
	}
	if c.SeenRetainDays <= 0 {
		return ErrInvalidRetention
	}
	return nil
}

// TelegramEnabled reports whether the Telegram channel is fully configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// PushoverEnabled reports whether the Pushover channel is fully configured.
func (c *Config) PushoverEnabled() bool {
	return c.PushoverUserKey != "" && c.PushoverAPIToken != ""
}

// IsLenient reports whether a subreddit gets the doubled recency window.
// Less active communities surface posts more slowly, so the narrow window
// would miss them.
func (c *Config) IsLenient(subreddit string) bool {
	return lo.Contains(c.LenientSubreddits, subreddit)
}

// stringList reads a key that may be either a comma-separated string or a
// proper list, trimming blanks either way.
func stringList(k *koanf.Koanf, key string) []string {
	raw := k.Get(key)
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []any:
		parts = lo.FilterMap(v, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok
		})
	case []string:
		parts = v
	default:
		return nil
	}

	return lo.FilterMap(parts, func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
}
