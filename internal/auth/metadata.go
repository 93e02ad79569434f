package auth

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device classes recorded on sessions.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// ClientMetadata describes the client that opened a session. It is informational only.
type ClientMetadata struct {
	OS             string
	OSVersion      string
	Browser        string
	BrowserVersion string
	Device         string
	IPAddress      string
	UserAgent      string
}

// ParseClientMetadata derives client metadata from the request headers.
func ParseClientMetadata(rc *RequestContext) ClientMetadata {
	raw := strings.TrimSpace(rc.UserAgent())
	meta := ClientMetadata{
		Device:    DeviceUnknown,
		IPAddress: rc.ClientIP(),
		UserAgent: raw,
	}
	if raw == "" {
		return meta
	}

	ua := useragent.New(raw)
	osInfo := ua.OSInfo()
	meta.OS = osInfo.Name
	meta.OSVersion = osInfo.Version
	meta.Browser, meta.BrowserVersion = ua.Browser()

	lower := strings.ToLower(raw)
	switch {
	case ua.Bot():
		meta.Device = DeviceBot
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"),
		strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"):
		meta.Device = DeviceTablet
	case ua.Mobile():
		meta.Device = DeviceMobile
	default:
		meta.Device = DeviceDesktop
	}

	return meta
}

func (m ClientMetadata) details() map[string]any {
	details := map[string]any{}
	if m.UserAgent != "" {
		details["user_agent"] = m.UserAgent
	}
	if m.BrowserVersion != "" {
		details["browser_version"] = m.BrowserVersion
	}
	if m.OSVersion != "" {
		details["os_version"] = m.OSVersion
	}
	return details
}
