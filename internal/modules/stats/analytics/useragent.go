package analytics

import "strings"

type userAgentInfo struct {
	Browser string
	OS      string
	Device  string
}

var botKeywords = []string{"bot", "crawler", "spider", "headless", "wget", "curl", "python-requests", "go-http", "java/", "scrapy"}

// isBotUA reports whether ua looks like a crawler or scripted client.
func isBotUA(ua string) bool {
	lower := strings.ToLower(ua)
	for _, kw := range botKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// parseUserAgent derives coarse browser, OS and device names. An empty UA
// yields empty fields so nothing is guessed.
func parseUserAgent(ua string) userAgentInfo {
	if strings.TrimSpace(ua) == "" {
		return userAgentInfo{}
	}
	info := userAgentInfo{Browser: "Unknown", OS: "Unknown", Device: "desktop"}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "edg/"):
		info.Browser = "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		info.Browser = "Opera"
	case strings.Contains(lower, "samsungbrowser/"):
		info.Browser = "Samsung Internet"
	case strings.Contains(lower, "chrome/") || strings.Contains(lower, "crios/"):
		info.Browser = "Chrome"
	case strings.Contains(lower, "firefox/") || strings.Contains(lower, "fxios/"):
		info.Browser = "Firefox"
	case strings.Contains(lower, "safari/") && strings.Contains(lower, "version/"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(lower, "windows"):
		info.OS = "Windows"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		info.OS = "iOS"
	case strings.Contains(lower, "mac os"):
		info.OS = "macOS"
	case strings.Contains(lower, "android"):
		info.OS = "Android"
	case strings.Contains(lower, "linux"):
		info.OS = "Linux"
	}

	switch {
	case isBotUA(lower):
		info.Device = "bot"
	case strings.Contains(lower, "tablet") || strings.Contains(lower, "ipad"):
		info.Device = "tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "iphone"):
		info.Device = "mobile"
	}
	return info
}
