// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avail

import (
	"github.com/gitcoin-inc/gitcoind/account"
	"github.com/gitcoin-inc/gitcoind/configuration"
	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/microunit"
)

// the speed bonus scales the base reward by up to one half
const speedBonus = 0.5

// Validate - check a proof against the ground truth fragment bytes
//
// checks in order: the proof arrived inside the challenge timeout,
// the response hash matches the expected range hash, the signature
// verifies against the expected public key
//
// the reward scales with promptness:
//   reward = ⌊bonus · (1 + max(0, 1 − t/timeout) · 0.5)⌋
// an instant proof earns 1.5x the base bonus, one at the timeout
// earns exactly the base bonus
func Validate(challenge *Challenge, proof *Proof, publicKey account.PublicKey, fragment []byte, config *configuration.Configuration) (microunit.MicroUnit, error) {

	responseTime := proof.RespondedAt - challenge.IssuedAt
	if responseTime < 0 {
		responseTime = 0
	}
	if responseTime > challenge.Timeout {
		return 0, fault.ErrChallengeTimeout
	}

	end := challenge.RangeStart + uint64(challenge.RangeLen)
	if end > uint64(len(fragment)) {
		return 0, fault.ErrInvalidByteRange
	}
	expected := digest.NewDigestPair(
		fragment[challenge.RangeStart:end],
		challenge.Nonce[:],
	)
	if expected != proof.ResponseHash {
		return 0, fault.ErrHashMismatch
	}

	err := account.Verify(publicKey, signable(challenge.ChallengeId, proof.ResponseHash), proof.Signature)
	if nil != err {
		return 0, err
	}

	// the response ratio is the only floating point in economic code,
	// the result rounds down to whole MicroUnit
	ratio := float64(responseTime) / float64(challenge.Timeout)
	factor := 1 + (1-ratio)*speedBonus
	reward := microunit.MicroUnit(float64(config.ChallengeBonus.Uint64()) * factor)

	return reward, nil
}
