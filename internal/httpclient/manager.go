// Package httpclient manages pooled HTTP clients keyed by configuration.
package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config defines the parameters for creating an HTTP client.
// It generates a unique fingerprint for client reuse.
type Config struct {
	ConnectTimeout      time.Duration
	RequestTimeout      time.Duration
	IdleConnTimeout     time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// Manager manages the lifecycle of HTTP clients. Clients with the same
// configuration fingerprint are reused.
type Manager struct {
	clients map[string]*http.Client
	lock    sync.RWMutex
}

// NewManager creates a new client manager.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*http.Client),
	}
}

// GetClient returns an HTTP client that matches the given configuration,
// creating and caching one when needed.
func (m *Manager) GetClient(config *Config) *http.Client {
	fingerprint := config.getFingerprint()

	m.lock.RLock()
	client, exists := m.clients[fingerprint]
	m.lock.RUnlock()
	if exists {
		return client
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	// Another goroutine may have created the client while we waited.
	if client, exists = m.clients[fingerprint]; exists {
		return client
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   config.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		Proxy:               http.ProxyFromEnvironment,
	}

	newClient := &http.Client{
		Transport: transport,
		Timeout:   config.RequestTimeout,
	}

	m.clients[fingerprint] = newClient

	logrus.WithFields(logrus.Fields{
		"fingerprint": fingerprint,
		"timeout":     config.RequestTimeout,
	}).Debug("Created new HTTP client")

	return newClient
}

// CloseIdleConnections closes idle connections for all managed clients.
func (m *Manager) CloseIdleConnections() {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for _, client := range m.clients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
	logrus.Debug("Closed idle connections for managed HTTP clients")
}

// getFingerprint generates a unique string representation of the configuration.
func (c *Config) getFingerprint() string {
	return fmt.Sprintf(
		"ct:%.0fs|rt:%.0fs|it:%.0fs|mic:%d|mich:%d",
		c.ConnectTimeout.Seconds(),
		c.RequestTimeout.Seconds(),
		c.IdleConnTimeout.Seconds(),
		c.MaxIdleConns,
		c.MaxIdleConnsPerHost,
	)
}
