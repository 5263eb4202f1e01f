package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"sort"
)

// Validator checks the X-Twilio-Signature header on inbound webhooks.
// Twilio signs the full request URL concatenated with the form parameters
// sorted by key, HMAC-SHA1 under the account auth token, base64 encoded.
type Validator struct {
	authToken string
}

func NewValidator(authToken string) *Validator {
	return &Validator{authToken: authToken}
}

// Enabled reports whether inbound signature checking is active. With no auth
// token configured the webhook accepts unsigned requests (development mode).
func (v *Validator) Enabled() bool {
	return v.authToken != ""
}

func (v *Validator) Validate(requestURL string, form url.Values, signature string) bool {
	if !v.Enabled() || signature == "" {
		return false
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(requestURL))
	for _, k := range keys {
		mac.Write([]byte(k))
		// Twilio signs only the first value for repeated keys.
		mac.Write([]byte(form.Get(k)))
	}

	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
