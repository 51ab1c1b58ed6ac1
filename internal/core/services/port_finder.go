package services

import (
	"fmt"
	"net"
	"strconv"
)

// Port range scanned when the MCP HTTP server is asked to pick its own port.
const (
	MCPPortRangeStart = 8765
	MCPPortRangeEnd   = 8865
)

// FindAvailablePort returns the first port in [startPort, endPort] that host
// can listen on.
func FindAvailablePort(host string, startPort, endPort int) (int, error) {
	if startPort <= 0 || endPort < startPort {
		return 0, fmt.Errorf("invalid port range %d-%d", startPort, endPort)
	}
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			_ = listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}
