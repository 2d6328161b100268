package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for Instagram.
	BaseURL = "https://www.instagram.com"

	// ProfileEndpoint is the endpoint for user profiles.
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// MediaEndpoint is the endpoint for user media.
	MediaEndpoint = "/graphql/query/"

	// MediaQueryHash is the query hash for fetching user media.
	MediaQueryHash = "e769aa130647d2354c40ea6a439bfc08"

	// MaxMediaLimit is the most media items one request can return.
	MaxMediaLimit = 50
)

// ProfileURL constructs the URL for fetching a user's profile.
func ProfileURL(base, username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s%s?%s", base, ProfileEndpoint, params.Encode())
}

// MediaURL constructs the URL for fetching a user's recent media.
func MediaURL(base, userID string, limit int) string {
	if limit <= 0 || limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}

	variables, _ := json.Marshal(map[string]interface{}{
		"id":    userID,
		"first": limit,
	})

	params := url.Values{}
	params.Set("query_hash", MediaQueryHash)
	params.Set("variables", string(variables))

	return fmt.Sprintf("%s%s?%s", base, MediaEndpoint, params.Encode())
}
