package config

import "errors"

var (
	ErrMissingEmailConfig = errors.New("EMAIL_USER, EMAIL_PASSWORD and NOTIFICATION_EMAIL environment variables are required")
	ErrNoKeywords         = errors.New("no keywords configured, set the KEYWORDS environment variable")
	ErrNoSubreddits       = errors.New("no subreddits configured")
	ErrInvalidThreshold   = errors.New("similarity_threshold must be between 0 and 1")
	ErrInvalidInterval    = errors.New("check_interval_minutes must be greater than zero")
	ErrInvalidRetention   = errors.New("seen_retain_days must be greater than zero")
)
