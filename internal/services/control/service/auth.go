package service

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// authorize decides whether a connection attempt may proceed. Loopback
// connections are always trusted; remote connections must come from an
// allowed address and, when a JWT secret is configured, present a valid
// bearer token.
func (s *Server) authorize(r *http.Request) error {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("unparseable remote address %q", r.RemoteAddr)
	}

	if ip.IsLoopback() {
		return nil
	}

	if !s.ipAllowed(ip) {
		return fmt.Errorf("address %s is not in the allowed list", ip)
	}

	if s.opts.JWTSecret != "" {
		if err := s.verifyBearer(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) ipAllowed(ip net.IP) bool {
	for _, entry := range s.opts.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		// The unspecified address opens the server to any remote peer.
		if entry == "0.0.0.0" || entry == "::" {
			return true
		}
		if strings.Contains(entry, "/") {
			_, network, err := net.ParseCIDR(entry)
			if err != nil {
				s.logf("invalid allowed-IP entry %q: %v", entry, err)
				continue
			}
			if network.Contains(ip) {
				return true
			}
			continue
		}
		if allowed := net.ParseIP(entry); allowed != nil && allowed.Equal(ip) {
			return true
		}
	}
	return false
}

func (s *Server) verifyBearer(r *http.Request) error {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return fmt.Errorf("missing bearer token")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("token is not valid")
	}
	return nil
}
