package imagegroup

import (
	"net/url"
	"strings"
)

// LogoBannerPatterns are URL path substrings indicating non-photo images.
var LogoBannerPatterns = []string{
	"favicon", "logo", "icon", "banner", "sprite",
	"badge", "button", "widget", "avatar",
}

// IsLogoOrBanner reports whether the path of rawURL contains a logo or
// banner pattern (case-insensitive). The host is ignored so that a site
// named "logoshop" does not reject every image on it.
func IsLogoOrBanner(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	lower := strings.ToLower(p)
	for _, pat := range LogoBannerPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}
