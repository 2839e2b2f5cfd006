// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - network identities
//
// an address is the lowercase hex SHA-256 of an ed25519 public key
package account

import (
	"encoding/hex"

	"golang.org/x/crypto/ed25519"

	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
)

// AddressLength - characters in the textual address form
const AddressLength = 2 * digest.Length

// Address - lowercase hex of the SHA-256 of a public key
type Address string

// SystemAddress - source marker for minting operations
const SystemAddress = Address("0000000000000000000000000000000000000000000000000000000000000000")

// NewAddress - derive the address of a public key
func NewAddress(publicKey []byte) (Address, error) {
	if ed25519.PublicKeySize != len(publicKey) {
		return "", fault.ErrInvalidKeyLength
	}
	d := digest.NewDigest(publicKey)
	return Address(d.String()), nil
}

// Validate - check the textual form
func (address Address) Validate() error {
	if AddressLength != len(address) {
		return fault.ErrInvalidAddress
	}
	for _, c := range address {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fault.ErrInvalidAddress
		}
	}
	return nil
}

// Bytes - the 32 raw bytes behind the hex form
func (address Address) Bytes() ([]byte, error) {
	err := address.Validate()
	if nil != err {
		return nil, err
	}
	return hex.DecodeString(string(address))
}

// String - for use by the fmt package (for %s)
func (address Address) String() string {
	return string(address)
}
