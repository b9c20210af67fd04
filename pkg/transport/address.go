// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"strings"
)

// resolveWebSocketURL turns a configured master address into a
// ws:// URL the gorilla/websocket dialer accepts. Murphy-style
// transport addresses name a transport type before a colon (e.g.
// "tcp:host:port"); this client only implements the WebSocket
// transport, so "tcp:" addresses are mapped onto a ws:// endpoint and
// anything already carrying a ws(s):// scheme passes through as-is.
func resolveWebSocketURL(masterAddress string) (string, error) {
	if masterAddress == "" {
		return "", fmt.Errorf("transport: empty master address")
	}

	if strings.HasPrefix(masterAddress, "ws://") || strings.HasPrefix(masterAddress, "wss://") {
		return masterAddress, nil
	}

	const tcpPrefix = "tcp:"
	if strings.HasPrefix(masterAddress, tcpPrefix) {
		hostPort := strings.TrimPrefix(masterAddress, tcpPrefix)
		if hostPort == "" {
			return "", fmt.Errorf("transport: master address %q has no host:port", masterAddress)
		}
		return "ws://" + hostPort + "/murphy", nil
	}

	return "", fmt.Errorf("transport: unsupported master address scheme in %q", masterAddress)
}
