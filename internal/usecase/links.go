package usecase

import "strings"

// RedemptionPath is the public route prefix; the token is the whole credential.
const RedemptionPath = "/g/"

// BuildRedemptionLink renders {baseURL}/g/{token}.
func BuildRedemptionLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + RedemptionPath + token
}
