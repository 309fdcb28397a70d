package scrape

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// blockedHosts are hostnames that must never be fetched server-side.
var blockedHosts = []string{
	"localhost",
	"metadata.google.internal",
}

// ValidateURL rejects URLs the crawler must not fetch: anything that is not
// https, and any loopback/private/link-local/cloud-metadata address. This
// runs before every network fetch of a user-supplied URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" {
		return fmt.Errorf("only https URLs are allowed, got scheme %q", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL has no hostname")
	}

	for _, blocked := range blockedHosts {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return fmt.Errorf("hostname %q is not allowed", host)
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("IP address %s is not allowed", ip)
		}
	}

	return nil
}
