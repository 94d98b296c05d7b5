package tms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShipAddressFiveLines(t *testing.T) {
	addr, ok := ParseShipAddress("Alice\nAcme\n123 Main St\nSpringfield IL 62701\nUnited States")
	require.True(t, ok)
	assert.Equal(t, "Alice", addr.Name)
	assert.Equal(t, "Acme", addr.Company)
	assert.Equal(t, "123 Main St", addr.Street)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "IL", addr.State)
	assert.Equal(t, "62701", addr.PostalCode)
	assert.Equal(t, "US", addr.Country)
}

func TestParseShipAddressFourLinesOmitsCompany(t *testing.T) {
	addr, ok := ParseShipAddress("Bob\n456 Oak Ave\nKansas City MO 64101\nUnited States")
	require.True(t, ok)
	assert.Empty(t, addr.Company)
	assert.Equal(t, "456 Oak Ave", addr.Street)
	assert.Equal(t, "Kansas City", addr.City)
	assert.Equal(t, "MO", addr.State)
	assert.Equal(t, "64101", addr.PostalCode)
}

func TestParseShipAddressMultiWordCity(t *testing.T) {
	addr, ok := ParseShipAddress("Carol\nAcme\n789 Elm St\nNew York City NY 10001\nUnited States")
	require.True(t, ok)
	assert.Equal(t, "New York City", addr.City)
	assert.Equal(t, "NY", addr.State)
	assert.Equal(t, "10001", addr.PostalCode)
}

func TestParseShipAddressThreeLinesDefaultsCountry(t *testing.T) {
	addr, ok := ParseShipAddress("Dan\n12 Pine Rd\nTopeka KS 66601")
	require.True(t, ok)
	assert.Equal(t, "US", addr.Country)
}

func TestParseShipAddressUnrecognized(t *testing.T) {
	for _, blob := range []string{"", "just one line", "two\nlines", "a\nb\nshort"} {
		addr, ok := ParseShipAddress(blob)
		assert.False(t, ok, "blob %q should not parse", blob)
		assert.Equal(t, ParsedAddress{}, addr)
	}
}

func TestParseShipAddressBlankLinesIgnored(t *testing.T) {
	addr, ok := ParseShipAddress("Alice\n\nAcme\n123 Main St\n\nSpringfield IL 62701\nUnited States\n")
	require.True(t, ok)
	assert.Equal(t, "Springfield", addr.City)
}

func TestNormalizeCountry(t *testing.T) {
	assert.Equal(t, "US", normalizeCountry("United States"))
	assert.Equal(t, "US", normalizeCountry("UNITED STATES OF AMERICA"))
	assert.Equal(t, "US", normalizeCountry("usa"))
	assert.Equal(t, "CA", normalizeCountry("ca"))
	assert.Equal(t, "Canada", normalizeCountry("Canada"))
}
