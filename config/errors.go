package config

import "errors"

// Configuration validation errors returned by Config.Validate and SourceConfig.Validate.
var (
	ErrInvalidDriver   = errors.New("database driver must be 'sqlite' or 'postgres'")
	ErrMissingDSN      = errors.New("database dsn is required")
	ErrInvalidTimeout  = errors.New("fetch timeout must be positive")
	ErrInvalidPacing   = errors.New("pacing requires 0 <= min_delay <= max_delay and a non-negative rate")
	ErrDuplicateSource = errors.New("duplicate source name")
	ErrUnknownSource   = errors.New("unknown source")
	ErrInvalidSource   = errors.New("invalid source")
)
