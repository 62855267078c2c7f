package auth

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestPrincipalRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, ok := PrincipalFrom(ctx); ok {
		t.Fatalf("PrincipalFrom on empty context returned a principal")
	}
	if got := OwnerFrom(ctx); got != "" {
		t.Fatalf("OwnerFrom on empty context = %q", got)
	}

	ctx = WithPrincipal(ctx, &Principal{Owner: "owner_1", APIKey: "tok"})
	p, ok := PrincipalFrom(ctx)
	if !ok || p.Owner != "owner_1" {
		t.Fatalf("PrincipalFrom = %+v, %v", p, ok)
	}
	if got := OwnerFrom(ctx); got != "owner_1" {
		t.Fatalf("OwnerFrom = %q", got)
	}
}

func TestParseBearer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"case insensitive scheme", "bearer abc123", "abc123", true},
		{"padded", "  Bearer   abc123  ", "abc123", true},
		{"missing", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"empty token", "Bearer   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			token, ok := ParseBearer(r)
			if token != tt.token || ok != tt.ok {
				t.Fatalf("ParseBearer(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.token, tt.ok)
			}
		})
	}
}
