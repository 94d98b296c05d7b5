package netsuite

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() Credentials {
	return Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		TokenKey:       "tk",
		TokenSecret:    "ts",
		Realm:          "123456_SB1",
	}
}

func TestNewSignerRejectsIncompleteCredentials(t *testing.T) {
	creds := testCredentials()
	creds.TokenSecret = ""
	_, err := NewSigner(creds)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestHeaderIsDeterministicForFixedNonceAndClock(t *testing.T) {
	signer, err := NewSigner(testCredentials())
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	fixed := signer.WithNonceAndClock("abc123", at)

	first, err := fixed.Header("GET", "https://123456.suitetalk.api.netsuite.com/services/rest/record/v1/salesOrder/42")
	require.NoError(t, err)
	second, err := fixed.Header("GET", "https://123456.suitetalk.api.netsuite.com/services/rest/record/v1/salesOrder/42")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHeaderChangesWithNonce(t *testing.T) {
	signer, err := NewSigner(testCredentials())
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	a, err := signer.WithNonceAndClock("nonce-a", at).Header("GET", "https://host.example.com/path")
	require.NoError(t, err)
	b, err := signer.WithNonceAndClock("nonce-b", at).Header("GET", "https://host.example.com/path")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHeaderShape(t *testing.T) {
	signer, err := NewSigner(testCredentials())
	require.NoError(t, err)

	header, err := signer.WithNonceAndClock("n", time.Unix(1700000000, 0)).
		Header("POST", "https://host.example.com/services/rest/query/v1/suiteql")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(header, `OAuth realm="123456_SB1"`))
	for _, part := range []string{
		`oauth_consumer_key="ck"`,
		`oauth_token="tk"`,
		`oauth_signature_method="HMAC-SHA256"`,
		`oauth_timestamp="1700000000"`,
		`oauth_nonce="n"`,
		`oauth_version="1.0"`,
		`oauth_signature="`,
	} {
		assert.Contains(t, header, part)
	}
}

func TestHeaderIncludesQueryParamsInSignature(t *testing.T) {
	signer, err := NewSigner(testCredentials())
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	fixed := signer.WithNonceAndClock("n", at)

	withQuery, err := fixed.Header("GET", "https://host.example.com/restlet?script=1&savedSearchId=100")
	require.NoError(t, err)
	without, err := fixed.Header("GET", "https://host.example.com/restlet")
	require.NoError(t, err)

	assert.NotEqual(t, withQuery, without)
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "abcXYZ019-._~", percentEncode("abcXYZ019-._~"))
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "%2B%2F%3D%26", percentEncode("+/=&"))
}

func TestNormalizeParamsSortsEncodedPairs(t *testing.T) {
	got := normalizeParams(map[string][]string{
		"b": {"2"},
		"a": {"1"},
		"c": {"3", "1"},
	})
	assert.Equal(t, "a=1&b=2&c=1&c=3", got)
}
