package xhttp

import (
	"net"
	"strings"
)

// ClientIP resolves the caller address. With trustedProxies > 0 it reads
// X-Forwarded-For from the right, skipping the entries our own proxies
// appended, so a client cannot spoof its address by prepending values.
func ClientIP(ctx *RequestCtx, trustedProxies int) string {
	if ip, ok := ForwardedIP(string(ctx.Request.Header.Peek("X-Forwarded-For")), trustedProxies); ok {
		return ip
	}
	return ctx.RemoteIP().String()
}

// ForwardedIP picks the client entry out of an X-Forwarded-For value given
// how many proxies in front of us append to it. A header shorter than the
// proxy chain or an entry that is not an IP address is not trusted.
func ForwardedIP(xff string, trustedProxies int) (string, bool) {
	if trustedProxies <= 0 || xff == "" {
		return "", false
	}
	parts := strings.Split(xff, ",")
	idx := len(parts) - trustedProxies
	if idx < 0 {
		return "", false
	}
	ip := net.ParseIP(strings.TrimSpace(parts[idx]))
	if ip == nil {
		return "", false
	}
	return ip.String(), true
}
