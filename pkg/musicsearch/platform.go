package musicsearch

import (
	"errors"
	"fmt"
	"strings"
)

// Platform identifies an upstream music search provider.
type Platform string

// Supported platforms.
const (
	PlatformNetEase Platform = "netease"
	PlatformQQ      Platform = "qq"
)

var (
	// ErrUnsupportedPlatform is returned for platform names outside the known set.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

var platformAliases = map[string]Platform{
	"netease": PlatformNetEase,
	"163":     PlatformNetEase,
	"网易云":     PlatformNetEase,
	"qq":      PlatformQQ,
	"qqmusic": PlatformQQ,
	"qq音乐":    PlatformQQ,
}

// Platforms lists every supported platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformQQ, PlatformNetEase}
}

// ParsePlatform maps a user-supplied platform name onto a Platform.
func ParsePlatform(name string) (Platform, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := platformAliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
}

// CardType returns the music card type tag for the platform.
func (p Platform) CardType() string {
	switch p {
	case PlatformNetEase:
		return "163"
	case PlatformQQ:
		return "qq"
	default:
		return string(p)
	}
}

func (p Platform) String() string {
	return string(p)
}
