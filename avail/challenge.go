// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package avail - proof of availability
//
// a challenger draws a random byte range from a stored fragment, the
// holder proves possession by hashing that range with a fresh nonce
// and signing the result, and a validator checks the proof against
// the ground truth and credits a speed-weighted reward
package avail

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/gitcoin-inc/gitcoind/configuration"
	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
)

// NonceLength - bytes of challenge nonce
const NonceLength = 32

// Nonce - the random bytes bound into a proof hash
type Nonce [NonceLength]byte

// challenge outcomes for the audit log
const (
	OutcomePass    = "pass"
	OutcomeFail    = "fail"
	OutcomeTimeout = "timeout"
)

// Challenge - a request to prove possession of one fragment
type Challenge struct {
	ChallengeId string        `json:"challengeId"`
	RepoHash    digest.Digest `json:"repoHash"`
	FragmentId  uint32        `json:"fragmentId"`
	ShareId     uint8         `json:"shareId"`
	RangeStart  uint64        `json:"rangeStart"`
	RangeLen    uint32        `json:"rangeLen"`
	Nonce       Nonce         `json:"nonce"`
	IssuedAt    int64         `json:"issuedAt"`
	Timeout     int64         `json:"timeout"` // seconds
}

// NewChallenge - draw a random challenge for a fragment of the given size
//
// the byte range is uniform within the configured bounds and always
// lies fully inside the fragment
func NewChallenge(rnd io.Reader, repoHash digest.Digest, fragmentId uint32, shareId uint8, fragmentSize uint64, config *configuration.Configuration) (*Challenge, error) {
	if fragmentSize < config.ChallengeMinBytes {
		return nil, fault.ErrFragmentTooSmall
	}

	maximum := config.ChallengeMaxBytes
	if fragmentSize < maximum {
		maximum = fragmentSize
	}

	rangeLen, err := uniform(rnd, config.ChallengeMinBytes, maximum)
	if nil != err {
		return nil, err
	}
	rangeStart, err := uniform(rnd, 0, fragmentSize-rangeLen)
	if nil != err {
		return nil, err
	}

	challenge := &Challenge{
		ChallengeId: uuid.New().String(),
		RepoHash:    repoHash,
		FragmentId:  fragmentId,
		ShareId:     shareId,
		RangeStart:  rangeStart,
		RangeLen:    uint32(rangeLen),
		IssuedAt:    time.Now().Unix(),
		Timeout:     config.ChallengeTimeout,
	}
	_, err = io.ReadFull(rnd, challenge.Nonce[:])
	if nil != err {
		return nil, err
	}

	return challenge, nil
}

// uniformly distributed integer in [low, high]
func uniform(rnd io.Reader, low uint64, high uint64) (uint64, error) {
	width := new(big.Int).SetUint64(high - low + 1)
	n, err := rand.Int(rnd, width)
	if nil != err {
		return 0, err
	}
	return low + n.Uint64(), nil
}

// MarshalText - convert nonce to hex text
func (nonce Nonce) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(nonce)))
	hex.Encode(buffer, nonce[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a nonce
func (nonce *Nonce) UnmarshalText(s []byte) error {
	if NonceLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidDigestLength
	}
	buffer := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(nonce[:], buffer[:byteCount])
	return nil
}
