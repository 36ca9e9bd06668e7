package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// IPWhitelist only lets listed clients through. Entries are single IPs or
// CIDR ranges; unparsable entries are ignored. An empty list allows all.
func IPWhitelist(entries []string) gin.HandlerFunc {
	nets := lo.FilterMap(entries, func(e string, _ int) (*net.IPNet, bool) {
		return parseEntry(strings.TrimSpace(e))
	})
	return func(c *gin.Context) {
		if len(entries) == 0 {
			c.Next()
			return
		}
		ip := net.ParseIP(c.ClientIP())
		if ip == nil || !lo.ContainsBy(nets, func(n *net.IPNet) bool { return n.Contains(ip) }) {
			Abort(c, http.StatusForbidden, "access denied")
			return
		}
		c.Next()
	}
}

func parseEntry(e string) (*net.IPNet, bool) {
	if _, n, err := net.ParseCIDR(e); err == nil {
		return n, true
	}
	ip := net.ParseIP(e)
	if ip == nil {
		return nil, false
	}
	bits := 128
	if ip4 := ip.To4(); ip4 != nil {
		ip, bits = ip4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, true
}
