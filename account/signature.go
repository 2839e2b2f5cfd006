// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/hex"

	"github.com/gitcoin-inc/gitcoind/fault"
)

// Signature - the type for an ed25519 signature
type Signature []byte

// PublicKey - the type for a raw ed25519 public key
type PublicKey []byte

// convert a binary signature to hex string for use by the fmt package (for %s)
func (signature Signature) String() string {
	return hex.EncodeToString(signature)
}

// GoString - convert a binary signature to hex string for use by the fmt package (for %#v)
func (signature Signature) GoString() string {
	return "<signature:" + hex.EncodeToString(signature) + ">"
}

// MarshalText - convert signature to hex text
func (signature Signature) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(signature)))
	hex.Encode(buffer, signature)
	return buffer, nil
}

// UnmarshalText - convert hex text into a signature
func (signature *Signature) UnmarshalText(s []byte) error {
	sig := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(sig, s)
	if nil != err {
		return err
	}
	if signatureLength != byteCount {
		return fault.ErrInvalidSignatureLength
	}
	*signature = sig[:byteCount]
	return nil
}

// String - convert a binary public key to hex string for use by the fmt package (for %s)
func (publicKey PublicKey) String() string {
	return hex.EncodeToString(publicKey)
}

// MarshalText - convert public key to hex text
func (publicKey PublicKey) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(publicKey)))
	hex.Encode(buffer, publicKey)
	return buffer, nil
}

// UnmarshalText - convert hex text into a public key
func (publicKey *PublicKey) UnmarshalText(s []byte) error {
	key := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(key, s)
	if nil != err {
		return err
	}
	if publicKeyLength != byteCount {
		return fault.ErrInvalidKeyLength
	}
	*publicKey = key[:byteCount]
	return nil
}
