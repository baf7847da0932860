package proxy

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// Settings describes an upstream HTTP proxy for outbound API calls.
type Settings struct {
	Enabled  bool
	Hostname string
	Port     int
	Username string
	Password string
}

// HasProxy returns true if proxy is enabled and configured.
func (p Settings) HasProxy() bool {
	return p.Enabled && p.Hostname != "" && p.Port > 0
}

// HostPort returns the proxy address without credentials, e.g. "http://proxy.local:3128".
func (p Settings) HostPort() string {
	if !p.HasProxy() {
		return ""
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(p.Hostname, strconv.Itoa(p.Port)))
}

// URL returns the proxy URL with escaped credentials, or nil when no proxy is configured.
func (p Settings) URL() *url.URL {
	if !p.HasProxy() {
		return nil
	}

	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(p.Hostname, strconv.Itoa(p.Port)),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}
