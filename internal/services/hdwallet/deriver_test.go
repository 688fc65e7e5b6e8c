package hdwallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BIP84 test vector: account 0 of the "abandon ... about" mnemonic.
const bip84AccountZpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"

func TestDeriver_Address(t *testing.T) {
	tests := []struct {
		name     string
		template string
		index    uint32
		expected string
	}{
		{name: "first receive address", template: "m/0/i", index: 0, expected: "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
		{name: "second receive address", template: "m/0/i", index: 1, expected: "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g"},
		{name: "first change address", template: "m/1/i", index: 0, expected: "bc1q8c6fshw2dlwun7ekn9qwf37cu2rn755upcp6el"},
		{name: "placeholder before fixed segment", template: "m/i/0", index: 1, expected: "bc1q8c6fshw2dlwun7ekn9qwf37cu2rn755upcp6el"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDeriver(bip84AccountZpub, tt.template)
			require.NoError(t, err)

			addr, err := d.Address(tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, addr)
		})
	}
}

func TestDeriver_RejectsBadInput(t *testing.T) {
	_, err := NewDeriver("not-a-key", DefaultPathTemplate)
	assert.Error(t, err)

	_, err = NewDeriver(bip84AccountZpub, "m/0")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	d, err := NewDeriver(bip84AccountZpub, DefaultPathTemplate)
	require.NoError(t, err)
	_, err = d.Address(1 << 31)
	assert.Error(t, err)
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name           string
		template       string
		expectedPrefix []uint32
		expectedSuffix []uint32
		expectErr      bool
	}{
		{name: "default", template: "m/0/i", expectedPrefix: []uint32{0}},
		{name: "index only", template: "m/i"},
		{name: "suffix", template: "m/2/i/7", expectedPrefix: []uint32{2}, expectedSuffix: []uint32{7}},
		{name: "missing m", template: "0/i", expectErr: true},
		{name: "no placeholder", template: "m/0/1", expectErr: true},
		{name: "two placeholders", template: "m/i/i", expectErr: true},
		{name: "hardened apostrophe", template: "m/0'/i", expectErr: true},
		{name: "hardened by value", template: "m/2147483648/i", expectErr: true},
		{name: "empty", template: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, suffix, err := ParseTemplate(tt.template)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidTemplate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedPrefix, prefix)
			assert.Equal(t, tt.expectedSuffix, suffix)
		})
	}
}
