package credentials

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var expiredMarkers = []string{
	"invalid_grant",
	"Token has been expired or revoked",
	"Invalid Credentials",
	"invalid_token",
}

// IsCredentialExpired reports whether err signals an expired or revoked OAuth
// token, meaning the user has to link their account again.
func IsCredentialExpired(err error) bool {
	if err == nil {
		return false
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant", "invalid_token":
			return true
		}
		if retrieveErr.Response != nil {
			status := retrieveErr.Response.StatusCode
			if status == http.StatusUnauthorized {
				return true
			}
			if status == http.StatusBadRequest && strings.Contains(string(retrieveErr.Body), "invalid_grant") {
				return true
			}
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return true
		}
		if apiErr.Code == http.StatusBadRequest &&
			(strings.Contains(apiErr.Message, "invalid_grant") || strings.Contains(apiErr.Body, "invalid_grant")) {
			return true
		}
	}

	msg := err.Error()
	for _, marker := range expiredMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
