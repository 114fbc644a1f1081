package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Manager handles the rotation of outbound proxies.
type Manager struct {
	proxies    []*url.URL
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the configured proxy URLs. Blank entries are ignored.
func NewManager(rawProxies []string) (*Manager, error) {
	m := &Manager{}
	for _, raw := range rawProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", raw)
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// Enabled reports whether any proxy is configured.
func (m *Manager) Enabled() bool {
	return len(m.proxies) > 0
}

// GetProxy returns a proxy URL from the list, rotating sequentially.
func (m *Manager) GetProxy() string {
	if u := m.next(); u != nil {
		return u.String()
	}
	return "" // No proxy
}

func (m *Manager) next() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// ProxyFunc plugs the rotation into http.Transport.Proxy.
// Every request takes the next proxy in the list.
func (m *Manager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return m.next(), nil
	}
}
