// Package hdwallet derives native SegWit receive addresses from an extended public key.
package hdwallet

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
)

// IndexPlaceholder marks the scanned segment of a path template.
const IndexPlaceholder = "i"

// DefaultPathTemplate walks the external chain below the account key.
const DefaultPathTemplate = "m/0/i"

var (
	// ErrInvalidTemplate is returned for malformed derivation path templates.
	ErrInvalidTemplate = errors.New("invalid derivation path template")
	// ErrPrivateKey is returned when an extended private key is supplied.
	ErrPrivateKey = errors.New("extended private keys are not accepted")
)

// Deriver turns a derivation index into a P2WPKH address.
// Version bytes of the key are not interpreted, so xpub, ypub and zpub serialisations all work.
type Deriver struct {
	// parent is the key after applying the template segments before the placeholder.
	parent *hdkeychain.ExtendedKey
	suffix []uint32
	params *chaincfg.Params
}

// NewDeriver parses the extended public key and the path template, e.g. "m/0/i".
func NewDeriver(xpub, template string) (*Deriver, error) {
	key, err := hdkeychain.NewKeyFromString(strings.TrimSpace(xpub))
	if err != nil {
		return nil, errors.Wrap(err, "parse extended public key")
	}
	if key.IsPrivate() {
		return nil, ErrPrivateKey
	}

	prefix, suffix, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}

	parent := key
	for _, child := range prefix {
		parent, err = parent.Derive(child)
		if err != nil {
			return nil, errors.Wrapf(err, "derive child %d", child)
		}
	}

	return &Deriver{parent: parent, suffix: suffix, params: &chaincfg.MainNetParams}, nil
}

// Address returns the bech32 P2WPKH address at the given index.
func (d *Deriver) Address(index uint32) (string, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return "", errors.Errorf("index %d is in the hardened range", index)
	}

	key, err := d.parent.Derive(index)
	if err != nil {
		return "", errors.Wrapf(err, "derive index %d", index)
	}
	for _, child := range d.suffix {
		key, err = key.Derive(child)
		if err != nil {
			return "", errors.Wrapf(err, "derive child %d", child)
		}
	}

	pub, err := key.ECPubKey()
	if err != nil {
		return "", errors.Wrap(err, "public key")
	}

	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), d.params)
	if err != nil {
		return "", errors.Wrap(err, "encode p2wpkh address")
	}

	return addr.EncodeAddress(), nil
}

// ParseTemplate splits a template into the non-hardened child numbers before and after the placeholder.
func ParseTemplate(template string) (prefix, suffix []uint32, err error) {
	segments := strings.Split(strings.TrimSpace(template), "/")
	if len(segments) < 2 || segments[0] != "m" {
		return nil, nil, errors.Wrapf(ErrInvalidTemplate, "%q must start with m/", template)
	}

	seen := false
	for _, segment := range segments[1:] {
		if segment == IndexPlaceholder {
			if seen {
				return nil, nil, errors.Wrapf(ErrInvalidTemplate, "%q has more than one %s", template, IndexPlaceholder)
			}
			seen = true
			continue
		}

		child, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidTemplate, "%q: segment %q is not a non-hardened index", template, segment)
		}
		if child >= hdkeychain.HardenedKeyStart {
			return nil, nil, errors.Wrapf(ErrInvalidTemplate, "%q: segment %q is hardened", template, segment)
		}

		if seen {
			suffix = append(suffix, uint32(child))
		} else {
			prefix = append(prefix, uint32(child))
		}
	}

	if !seen {
		return nil, nil, errors.Wrapf(ErrInvalidTemplate, "%q has no %s segment", template, IndexPlaceholder)
	}

	return prefix, suffix, nil
}
