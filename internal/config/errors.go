package config

import (
	"errors"

	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/traverse"
)

var (
	ErrInvalidTimeout     = errors.New("invalid timeout: must be positive")
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
	ErrInvalidSizeCap     = errors.New("invalid size cap: must be positive")

	// Shared with the packages that raise them at crawl time.
	ErrUnknownSite     = sites.ErrUnknownSite
	ErrMissingTemplate = traverse.ErrMissingTemplate
)
