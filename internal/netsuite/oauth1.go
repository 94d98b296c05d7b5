package netsuite

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrMissingCredentials = errors.New("netsuite oauth1 credentials are incomplete")

// Credentials is the fixed OAuth1 tuple NetSuite issues per integration.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	TokenKey       string
	TokenSecret    string
	Realm          string
}

func (c Credentials) validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" || c.TokenKey == "" || c.TokenSecret == "" || c.Realm == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Signer produces OAuth1 Authorization headers using HMAC-SHA256.
// Nonce and clock are injectable so the signature is deterministic under test.
type Signer struct {
	creds Credentials
	nonce func() string
	now   func() time.Time
}

func NewSigner(creds Credentials) (*Signer, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &Signer{
		creds: creds,
		nonce: randomNonce,
		now:   time.Now,
	}, nil
}

// Header signs method+rawURL and returns the value for the Authorization header.
// Query parameters in rawURL participate in the signature base string.
func (s *Signer) Header(method, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing request url: %w", err)
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_token":            s.creds.TokenKey,
		"oauth_signature_method": "HMAC-SHA256",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_nonce":            s.nonce(),
		"oauth_version":          "1.0",
	}

	params := make(map[string][]string)
	for k, vs := range u.Query() {
		params[k] = append(params[k], vs...)
	}
	for k, v := range oauthParams {
		params[k] = append(params[k], v)
	}

	baseURL := u.Scheme + "://" + strings.ToLower(u.Host) + u.Path
	base := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(normalizeParams(params))

	key := percentEncode(s.creds.ConsumerSecret) + "&" + percentEncode(s.creds.TokenSecret)
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	var b strings.Builder
	b.WriteString(`OAuth realm="` + percentEncode(s.creds.Realm) + `"`)
	for _, k := range []string{
		"oauth_consumer_key",
		"oauth_token",
		"oauth_signature_method",
		"oauth_timestamp",
		"oauth_nonce",
		"oauth_version",
	} {
		b.WriteString(`, ` + k + `="` + percentEncode(oauthParams[k]) + `"`)
	}
	b.WriteString(`, oauth_signature="` + percentEncode(signature) + `"`)
	return b.String(), nil
}

// normalizeParams sorts encoded key/value pairs per RFC 5849 §3.4.1.3.2.
func normalizeParams(params map[string][]string) string {
	pairs := make([]string, 0, len(params))
	for k, vs := range params {
		ek := percentEncode(k)
		for _, v := range vs {
			pairs = append(pairs, ek+"="+percentEncode(v))
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// percentEncode implements the RFC 3986 unreserved-set encoding OAuth1 requires.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString("%" + strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}

func randomNonce() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// WithNonceAndClock returns a copy of the signer with fixed nonce and timestamp.
func (s *Signer) WithNonceAndClock(nonce string, at time.Time) *Signer {
	clone := *s
	clone.nonce = func() string { return nonce }
	clone.now = func() time.Time { return at }
	return &clone
}
