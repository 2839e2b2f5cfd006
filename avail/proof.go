// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avail

import (
	"github.com/gitcoin-inc/gitcoind/account"
	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
)

// Proof - a node's response to a challenge
type Proof struct {
	ChallengeId     string            `json:"challengeId"`
	ResponseHash    digest.Digest     `json:"responseHash"`
	Signature       account.Signature `json:"signature"`
	SignerPublicKey account.PublicKey `json:"signerPublicKey"`
	RespondedAt     int64             `json:"respondedAt"`
}

// NewProof - prove possession of a fragment
//
// the response hash commits to the challenged range and the nonce:
//   SHA-256(fragment[start .. start+len] || nonce)
// and the signature covers challenge id bytes followed by that hash
func NewProof(challenge *Challenge, fragment []byte, keyPair *account.KeyPair, respondedAt int64) (*Proof, error) {
	end := challenge.RangeStart + uint64(challenge.RangeLen)
	if end > uint64(len(fragment)) {
		return nil, fault.ErrInvalidByteRange
	}

	responseHash := digest.NewDigestPair(
		fragment[challenge.RangeStart:end],
		challenge.Nonce[:],
	)

	return &Proof{
		ChallengeId:     challenge.ChallengeId,
		ResponseHash:    responseHash,
		Signature:       keyPair.Sign(signable(challenge.ChallengeId, responseHash)),
		SignerPublicKey: keyPair.PublicKey(),
		RespondedAt:     respondedAt,
	}, nil
}

// the byte string covered by a proof signature
func signable(challengeId string, responseHash digest.Digest) []byte {
	message := make([]byte, 0, len(challengeId)+digest.Length)
	message = append(message, challengeId...)
	return append(message, responseHash[:]...)
}
