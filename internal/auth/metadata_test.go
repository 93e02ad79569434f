package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func metadataFor(userAgent string) ClientMetadata {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return ParseClientMetadata(NewRequestContext(req, nil))
}

func TestParseClientMetadataDesktop(t *testing.T) {
	meta := metadataFor(chromeMacUA)

	require.Equal(t, "Chrome", meta.Browser)
	require.Equal(t, "120.0.0.0", meta.BrowserVersion)
	require.Contains(t, meta.OS, "Mac")
	require.Equal(t, DeviceDesktop, meta.Device)
	require.Equal(t, chromeMacUA, meta.UserAgent)
}

func TestParseClientMetadataDeviceClasses(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1": DeviceMobile,
		"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1":         DeviceTablet,
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)":                                                                 DeviceBot,
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0":                                                                   DeviceDesktop,
	}

	for userAgent, want := range cases {
		require.Equal(t, want, metadataFor(userAgent).Device, userAgent)
	}
}

func TestParseClientMetadataWithoutUserAgent(t *testing.T) {
	meta := metadataFor("")

	require.Equal(t, DeviceUnknown, meta.Device)
	require.Empty(t, meta.Browser)
	require.Empty(t, meta.OS)
	require.Empty(t, meta.details())
}
