// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package field

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/gitcoin-inc/gitcoind/fault"
)

// Length - number of bytes in the canonical encoding of an element
const Length = 32

// the prime modulus: p = 2^256 - 189
var prime *big.Int

// exponent for Fermat inversion: p - 2
var primeMinusTwo *big.Int

func init() {
	prime = new(big.Int).Lsh(big.NewInt(1), 256)
	prime.Sub(prime, big.NewInt(189))
	primeMinusTwo = new(big.Int).Sub(prime, big.NewInt(2))
}

// Element - an element of GF(p)
//
// the stored value is always reduced to [0, p)
type Element struct {
	value *big.Int
}

// Zero - the additive identity
func Zero() Element {
	return Element{value: new(big.Int)}
}

// One - the multiplicative identity
func One() Element {
	return Element{value: big.NewInt(1)}
}

// FromUint64 - create an element from a small integer
func FromUint64(n uint64) Element {
	v := new(big.Int).SetUint64(n)
	v.Mod(v, prime)
	return Element{value: v}
}

// FromBytes - create an element from exactly 32 big endian bytes, reducing mod p
func FromBytes(buffer []byte) (Element, error) {
	if Length != len(buffer) {
		return Element{}, fault.ErrInvalidElementLength
	}
	v := new(big.Int).SetBytes(buffer)
	v.Mod(v, prime)
	return Element{value: v}, nil
}

// Random - draw a uniformly distributed element from a cryptographic source
func Random(rnd io.Reader) (Element, error) {
	v, err := rand.Int(rnd, prime)
	if nil != err {
		return Element{}, err
	}
	return Element{value: v}, nil
}

// internal accessor that also makes the zero value of Element safe to use
func (element Element) big() *big.Int {
	if nil == element.value {
		return new(big.Int)
	}
	return element.value
}

// Add - sum mod p
func (element Element) Add(other Element) Element {
	v := new(big.Int).Add(element.big(), other.big())
	v.Mod(v, prime)
	return Element{value: v}
}

// Sub - difference mod p
func (element Element) Sub(other Element) Element {
	v := new(big.Int).Sub(element.big(), other.big())
	v.Mod(v, prime) // big.Int.Mod is Euclidean so the result is non-negative
	return Element{value: v}
}

// Mul - product mod p
func (element Element) Mul(other Element) Element {
	v := new(big.Int).Mul(element.big(), other.big())
	v.Mod(v, prime)
	return Element{value: v}
}

// Inverse - multiplicative inverse by Fermat: a^(p-2) mod p
func (element Element) Inverse() (Element, error) {
	if element.IsZero() {
		return Element{}, fault.ErrZeroInverse
	}
	v := new(big.Int).Exp(element.big(), primeMinusTwo, prime)
	return Element{value: v}, nil
}

// Div - multiply by the inverse of the divisor
func (element Element) Div(other Element) (Element, error) {
	inverse, err := other.Inverse()
	if nil != err {
		return Element{}, err
	}
	return element.Mul(inverse), nil
}

// IsZero - check for the additive identity
func (element Element) IsZero() bool {
	return 0 == element.big().Sign()
}

// Equal - value comparison
func (element Element) Equal(other Element) bool {
	return 0 == element.big().Cmp(other.big())
}

// Bytes - canonical 32-byte big endian encoding
func (element Element) Bytes() [Length]byte {
	var buffer [Length]byte
	b := element.big().Bytes()
	copy(buffer[Length-len(b):], b)
	return buffer
}

// String - hex of the canonical encoding for use by the fmt package (for %s)
func (element Element) String() string {
	buffer := element.Bytes()
	d := make([]byte, 0, 2*Length)
	for _, b := range buffer[:] {
		d = append(d, hexDigits[b>>4], hexDigits[b&0x0f])
	}
	return string(d)
}

const hexDigits = "0123456789abcdef"
