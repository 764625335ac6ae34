package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/sceneforge/internal/engine/headless"
	"github.com/louisbranch/sceneforge/internal/services/control/storage/memory"
)

func newAuthServer(t *testing.T, opts Options) *Server {
	t.Helper()
	eng, err := headless.New()
	if err != nil {
		t.Fatalf("headless.New() error = %v", err)
	}
	return New(eng, memory.New(), opts)
}

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "scenectl",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthorizeLoopbackAlwaysAllowed(t *testing.T) {
	srv := newAuthServer(t, Options{JWTSecret: "secret"})

	for _, addr := range []string{"127.0.0.1:50000", "[::1]:50000"} {
		req := httptest.NewRequest("GET", "/ws", nil)
		req.RemoteAddr = addr
		if err := srv.authorize(req); err != nil {
			t.Errorf("authorize(%s) = %v, want nil", addr, err)
		}
	}
}

func TestAuthorizeRemoteNeedsAllowedIP(t *testing.T) {
	srv := newAuthServer(t, Options{AllowedIPs: []string{"10.0.0.5", "192.168.1.0/24"}})

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "listed ip", addr: "10.0.0.5:1234"},
		{name: "in cidr", addr: "192.168.1.77:1234"},
		{name: "outside cidr", addr: "192.168.2.1:1234", wantErr: true},
		{name: "unlisted", addr: "8.8.8.8:1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			req.RemoteAddr = tt.addr
			err := srv.authorize(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("authorize(%s) = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeRemoteNeedsToken(t *testing.T) {
	const secret = "test-secret"
	srv := newAuthServer(t, Options{
		AllowedIPs: []string{"10.0.0.0/8"},
		JWTSecret:  secret,
	})

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{name: "valid token", header: "Bearer " + signToken(t, secret, time.Minute)},
		{name: "missing header", header: "", wantErr: true},
		{name: "not bearer", header: "Basic abc", wantErr: true},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", time.Minute), wantErr: true},
		{name: "expired", header: "Bearer " + signToken(t, secret, -time.Minute), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			req.RemoteAddr = "10.1.2.3:4000"
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			err := srv.authorize(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("authorize() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeWildcardAllowsAnyRemote(t *testing.T) {
	srv := newAuthServer(t, Options{AllowedIPs: []string{"0.0.0.0"}})

	for _, addr := range []string{"203.0.113.9:4000", "10.0.0.5:1234", "[2001:db8::1]:4000"} {
		req := httptest.NewRequest("GET", "/ws", nil)
		req.RemoteAddr = addr
		if err := srv.authorize(req); err != nil {
			t.Errorf("authorize(%s) = %v, want nil with wildcard entry", addr, err)
		}
	}
}

func TestIPAllowedSkipsBadEntries(t *testing.T) {
	srv := newAuthServer(t, Options{AllowedIPs: []string{"not-an-ip", "bad/cidr", "10.0.0.1"}})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.0.0.1:9"
	if err := srv.authorize(req); err != nil {
		t.Errorf("authorize() = %v, want nil despite malformed entries", err)
	}
}
