package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// ClientInfo holds what the request logger records about the caller
type ClientInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

var tabletIndicators = []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "sm-t"}

// ParseUserAgent parses a User-Agent string
func ParseUserAgent(userAgent string) ClientInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return ClientInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)

	info := ClientInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Browser:    "Unknown",
		IsBot:      parser.Bot(),
	}

	if parser.Mobile() {
		info.DeviceType = "mobile"
		lower := strings.ToLower(userAgent)
		for _, indicator := range tabletIndicators {
			if strings.Contains(lower, indicator) {
				info.DeviceType = "tablet"
				break
			}
		}
	}

	if osInfo := parser.OSInfo(); osInfo.Name != "" {
		info.OS = strings.TrimSpace(osInfo.Name + " " + osInfo.Version)
	}
	if name, version := parser.Browser(); name != "" {
		info.Browser = strings.TrimSpace(name + " " + version)
	}

	return info
}
