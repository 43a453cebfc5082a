package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// PingTimeout bounds a single reachability probe
const PingTimeout = 1500 * time.Millisecond

var defaultPorts = map[string]string{
	"http":   "80",
	"https":  "443",
	"redis":  "6379",
	"rediss": "6379",
}

// ServiceAddress resolves the host:port a service URL dials
func ServiceAddress(serviceURL string) (string, error) {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		return "", fmt.Errorf("invalid URL: missing host in %q", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		var ok bool
		if port, ok = defaultPorts[parsedURL.Scheme]; !ok {
			return "", fmt.Errorf("invalid URL: no default port for scheme %q", parsedURL.Scheme)
		}
	}

	return net.JoinHostPort(host, port), nil
}

// PingService opens and closes a TCP connection to the service at serviceURL
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	address, err := ServiceAddress(serviceURL)
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks if the Authorizer service is reachable
func PingAuthorizer(ctx context.Context, authzURL string) error {
	return PingService(ctx, authzURL, PingTimeout)
}

// PingLLM checks if the language model API host accepts connections
func PingLLM(ctx context.Context, baseURL string) error {
	return PingService(ctx, baseURL, PingTimeout)
}
