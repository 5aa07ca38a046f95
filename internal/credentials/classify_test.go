package credentials

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestIsCredentialExpired(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "invalid grant message", err: errors.New("oauth2: \"invalid_grant\""), want: true},
		{name: "expired or revoked", err: errors.New("Token has been expired or revoked."), want: true},
		{name: "invalid credentials", err: errors.New("Invalid Credentials"), want: true},
		{name: "invalid token", err: errors.New("error: invalid_token"), want: true},
		{name: "case sensitive", err: errors.New("invalid credentials"), want: false},
		{name: "generic network", err: errors.New("dial tcp: connection refused"), want: false},
		{name: "googleapi 401", err: &googleapi.Error{Code: http.StatusUnauthorized, Message: "Login Required"}, want: true},
		{name: "googleapi 400 invalid grant", err: &googleapi.Error{Code: http.StatusBadRequest, Body: `{"error":"invalid_grant"}`}, want: true},
		{name: "googleapi 400 other", err: &googleapi.Error{Code: http.StatusBadRequest, Message: "Bad Request"}, want: false},
		{name: "googleapi 404", err: &googleapi.Error{Code: http.StatusNotFound, Message: "File not found"}, want: false},
		{name: "retrieve error code", err: &oauth2.RetrieveError{ErrorCode: "invalid_grant"}, want: true},
		{
			name: "retrieve error 401",
			err:  &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusUnauthorized}},
			want: true,
		},
		{
			name: "retrieve error wrapped in url error",
			err: &url.Error{Op: "Get", URL: "https://www.googleapis.com/drive/v3/files/x", Err: &oauth2.RetrieveError{
				Response: &http.Response{StatusCode: http.StatusBadRequest},
				Body:     []byte(`{"error":"invalid_grant","error_description":"Bad Request"}`),
			}},
			want: true,
		},
		{name: "wrapped", err: fmt.Errorf("fetch doc-1: %w", &googleapi.Error{Code: http.StatusUnauthorized}), want: true},
		{name: "server error", err: &googleapi.Error{Code: http.StatusInternalServerError, Message: "backend"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCredentialExpired(tt.err))
		})
	}
}
