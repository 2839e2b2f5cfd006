// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shamir - threshold secret sharing over GF(2^256 - 189)
//
// a secret is length-prefixed, zero padded to a multiple of 32 bytes
// and every 32-byte block is shared independently: the block is the
// constant term of a random polynomial of degree k-1 which is
// evaluated at x = 1 .. n, one share per recipient per block
package shamir

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/field"
)

// BlockSize - bytes of secret carried by one share
const BlockSize = 32

// share ids are a single byte
const maximumShares = 255

// length prefix of the padded secret
const prefixLength = 4

// Split - divide a secret among n recipients of which any k reconstruct
//
// the result holds one share per recipient per 32-byte block of the
// padded secret, so n shares for every block
//
// coefficients are drawn from rnd which must be a cryptographically
// secure source
func Split(rnd io.Reader, secret []byte, k int, n int) ([]Share, error) {
	if 0 == len(secret) {
		return nil, fault.ErrEmptySecret
	}
	if k < 1 {
		return nil, fault.ErrThresholdTooLow
	}
	if k > maximumShares || n > maximumShares {
		return nil, fault.ErrThresholdExceedsMax
	}
	if n < k {
		return nil, fault.ErrInsufficientShares
	}

	padded := pad(secret)
	blockCount := len(padded) / BlockSize

	shares := make([]Share, 0, n*blockCount)

	coefficients := make([]field.Element, k)

	for blockIndex := 0; blockIndex < blockCount; blockIndex += 1 {
		block := padded[blockIndex*BlockSize : (blockIndex+1)*BlockSize]

		// constant term is the secret block
		a0, err := field.FromBytes(block)
		if nil != err {
			return nil, err
		}
		coefficients[0] = a0

		for i := 1; i < k; i += 1 {
			coefficients[i], err = field.Random(rnd)
			if nil != err {
				return nil, err
			}
		}

		for id := 1; id <= n; id += 1 {
			x := field.FromUint64(uint64(id))
			shares = append(shares, Share{
				ShareId:    uint8(id),
				BlockIndex: uint32(blockIndex),
				X:          x,
				Y:          evaluate(coefficients, x),
			})
		}
	}

	return shares, nil
}

// Reconstruct - recover the secret from at least k shares per block
func Reconstruct(shares []Share, k int) ([]byte, error) {
	if k < 1 {
		return nil, fault.ErrThresholdTooLow
	}
	if k > maximumShares {
		return nil, fault.ErrThresholdExceedsMax
	}

	blocks := make(map[uint32][]Share)
	for _, share := range shares {
		blocks[share.BlockIndex] = append(blocks[share.BlockIndex], share)
	}
	if 0 == len(blocks) {
		return nil, fault.ErrInsufficientShares
	}

	blockCount := len(blocks)

	secret := make([]byte, 0, blockCount*BlockSize)

	for blockIndex := 0; blockIndex < blockCount; blockIndex += 1 {
		group, ok := blocks[uint32(blockIndex)]
		if !ok {
			// a gap in block indices means shares from different splits were mixed
			return nil, fault.ErrInconsistentBlocks
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].ShareId < group[j].ShareId
		})
		for i := 1; i < len(group); i += 1 {
			if group[i].ShareId == group[i-1].ShareId {
				return nil, fault.ErrDuplicateShareIds
			}
		}
		if len(group) < k {
			return nil, fault.ErrInsufficientShares
		}

		element, err := interpolateAtZero(group[:k])
		if nil != err {
			return nil, err
		}
		buffer := element.Bytes()
		secret = append(secret, buffer[:]...)
	}

	return unpad(secret)
}

// evaluate the polynomial at x using Horner's method
// coefficients[0] is the constant term
func evaluate(coefficients []field.Element, x field.Element) field.Element {
	result := field.Zero()
	for i := len(coefficients) - 1; i >= 0; i -= 1 {
		result = result.Mul(x).Add(coefficients[i])
	}
	return result
}

// Lagrange interpolation at x = 0:
//   S = Σᵢ yᵢ · Πⱼ≠ᵢ xⱼ · (xⱼ - xᵢ)⁻¹
func interpolateAtZero(points []Share) (field.Element, error) {
	secret := field.Zero()

	for i, pi := range points {
		numerator := field.One()
		denominator := field.One()

		for j, pj := range points {
			if i == j {
				continue
			}
			numerator = numerator.Mul(pj.X)
			denominator = denominator.Mul(pj.X.Sub(pi.X))
		}

		term, err := pi.Y.Mul(numerator).Div(denominator)
		if nil != err {
			return field.Element{}, err
		}
		secret = secret.Add(term)
	}

	return secret, nil
}

// prefix the secret with its length and zero pad to a whole number of blocks
func pad(secret []byte) []byte {
	prefixed := make([]byte, prefixLength, prefixLength+len(secret))
	binary.BigEndian.PutUint32(prefixed, uint32(len(secret)))
	prefixed = append(prefixed, secret...)

	if remainder := len(prefixed) % BlockSize; 0 != remainder {
		prefixed = append(prefixed, make([]byte, BlockSize-remainder)...)
	}
	return prefixed
}

// reverse of pad
func unpad(padded []byte) ([]byte, error) {
	if len(padded) < prefixLength {
		return nil, fault.ErrInvalidPadding
	}
	length := int(binary.BigEndian.Uint32(padded))
	if length > len(padded)-prefixLength {
		return nil, fault.ErrInvalidPadding
	}
	return padded[prefixLength : prefixLength+length], nil
}
