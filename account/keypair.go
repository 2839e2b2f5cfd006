// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"io"

	"golang.org/x/crypto/ed25519"

	"github.com/gitcoin-inc/gitcoind/fault"
)

// key sizes
const (
	SeedLength      = ed25519.SeedSize
	signatureLength = ed25519.SignatureSize
	publicKeyLength = ed25519.PublicKeySize
)

// KeyPair - an ed25519 signing identity
type KeyPair struct {
	privateKey ed25519.PrivateKey
}

// NewKeyPair - generate a key pair from a cryptographic source
func NewKeyPair(rnd io.Reader) (*KeyPair, error) {
	_, privateKey, err := ed25519.GenerateKey(rnd)
	if nil != err {
		return nil, err
	}
	return &KeyPair{privateKey: privateKey}, nil
}

// KeyPairFromSeed - rebuild a key pair from its 32-byte seed
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if SeedLength != len(seed) {
		return nil, fault.ErrInvalidSeedLength
	}
	return &KeyPair{privateKey: ed25519.NewKeyFromSeed(seed)}, nil
}

// Seed - the 32 bytes that fully determine the key pair
func (keyPair *KeyPair) Seed() []byte {
	return keyPair.privateKey.Seed()
}

// PublicKey - the raw public key
func (keyPair *KeyPair) PublicKey() PublicKey {
	return PublicKey(keyPair.privateKey.Public().(ed25519.PublicKey))
}

// Address - the network address of this key pair
func (keyPair *KeyPair) Address() Address {
	address, err := NewAddress(keyPair.PublicKey())
	if nil != err {
		// a key pair always carries a well formed public key
		panic(err)
	}
	return address
}

// Sign - produce the 64-byte signature of a message
func (keyPair *KeyPair) Sign(message []byte) Signature {
	return Signature(ed25519.Sign(keyPair.privateKey, message))
}

// Verify - check a signature against a public key
func Verify(publicKey PublicKey, message []byte, signature Signature) error {
	if publicKeyLength != len(publicKey) {
		return fault.ErrInvalidKeyLength
	}
	if signatureLength != len(signature) {
		return fault.ErrInvalidSignatureLength
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}
