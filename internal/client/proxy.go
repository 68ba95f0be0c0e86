// ABOUTME: SSH+SOCKS5 tunnel support for reaching an API behind a jumpbox
// ABOUTME: Parses ssh+socks5://user@host:port?private-key=/path and builds a dialing transport

package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// ProxyConfig is a parsed ALL_PROXY value.
type ProxyConfig struct {
	Username string
	Host     string
	KeyPath  string
}

// ParseProxyURL parses ssh+socks5://user@host:port?private-key=/path/to/key.
func ParseProxyURL(allProxy string) (*ProxyConfig, error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return nil, errors.New("proxy URL has no host")
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, errors.New("proxy URL missing required 'private-key' query param")
	}
	if err := validateKeyPath(keyPath); err != nil {
		return nil, err
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	return &ProxyConfig{Username: username, Host: proxyURL.Host, KeyPath: keyPath}, nil
}

func validateKeyPath(path string) error {
	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..") {
		return fmt.Errorf("private-key path %q must not contain '..'", path)
	}
	return nil
}

// ProxyTransport returns an http.Transport that dials through the SSH tunnel.
// The SSH connection is established lazily on the first request.
func ProxyTransport(allProxy string) (*http.Transport, error) {
	cfg, err := ParseProxyURL(allProxy)
	if err != nil {
		return nil, err
	}

	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = socks5DialContext(cfg, string(key))
	return transport, nil
}

// WithProxy routes requests through the SSH+SOCKS5 tunnel described by
// allProxy. An empty value leaves the transport unchanged.
func WithProxy(allProxy string) (Option, error) {
	if allProxy == "" {
		return func(*Client) {}, nil
	}
	transport, err := ProxyTransport(allProxy)
	if err != nil {
		return nil, err
	}
	return WithTransport(transport), nil
}

func socks5DialContext(cfg *ProxyConfig, key string) func(ctx context.Context, network, address string) (net.Conn, error) {
	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(cfg.Username, key, cfg.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
