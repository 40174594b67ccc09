package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		cfg       HTTPClientConfig
		expectErr bool
	}{
		{name: "empty", cfg: HTTPClientConfig{}},
		{name: "bearer_only", cfg: HTTPClientConfig{BearerToken: "tok"}},
		{name: "basic_only", cfg: HTTPClientConfig{BasicAuth: &BasicAuth{Username: "u", Password: "p"}}},
		{
			name:      "both",
			cfg:       HTTPClientConfig{BearerToken: "tok", BasicAuth: &BasicAuth{Username: "u"}},
			expectErr: true,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := test.cfg.Validate()
			if test.expectErr && err == nil {
				t.Errorf("validating conflicting auth config must return an error")
			}
			if !test.expectErr && err != nil {
				t.Errorf("the error should not be returned: %v", err)
			}
		})
	}
}

func TestNewClientFromConfig_Auth(t *testing.T) {
	t.Parallel()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client, err := NewClientFromConfig(HTTPClientConfig{BearerToken: "tok"}, true)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	resp.Body.Close()
	if gotAuth != "Bearer tok" {
		t.Errorf("authorization header, got: %q, expected: %q", gotAuth, "Bearer tok")
	}
}
