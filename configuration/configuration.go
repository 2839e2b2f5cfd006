// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/microunit"
)

// limits fixed by the protocol
const (
	maximumShares = 255    // share ids are one byte
	basisPoints   = 10_000 // divisor for all bps rates
	bytesPerMB    = 1_048_576
)

// Configuration - all tunable protocol parameters
//
// the zero value is not usable, start from Default()
type Configuration struct {
	K                   int                 // shares required to reconstruct
	N                   int                 // total shares per chunk
	ChunkSize           int                 // fixed chunking size in bytes
	ChallengeTimeout    int64               // seconds allowed for a proof to arrive
	ChallengeMinBytes   uint64              // smallest random challenge range
	ChallengeMaxBytes   uint64              // largest random challenge range
	PushFeeRate         microunit.MicroUnit // fee per MB pushed
	PullFeeRate         microunit.MicroUnit // fee per MB pulled
	BandwidthRate       microunit.MicroUnit // reward per MB served
	ChallengeBonus      microunit.MicroUnit // base reward per passed challenge
	InitialSupply       microunit.MicroUnit // supply minted at genesis
	EmissionRateBps     uint32              // annual emission in basis points
	EmissionDecreaseBps uint32              // annual emission decay in basis points
	PushBurnRateBps     uint32              // fraction of push fees burned
	PullBurnRateBps     uint32              // fraction of pull fees burned
}

// Default - the protocol constants
func Default() *Configuration {
	return &Configuration{
		K:                   5,
		N:                   9,
		ChunkSize:           512 * 1024,
		ChallengeTimeout:    30,
		ChallengeMinBytes:   1024,
		ChallengeMaxBytes:   64 * 1024,
		PushFeeRate:         1_000,
		PullFeeRate:         500,
		BandwidthRate:       500,
		ChallengeBonus:      10_000,
		InitialSupply:       100_000_000 * microunit.PerUnit,
		EmissionRateBps:     200,
		EmissionDecreaseBps: 10,
		PushBurnRateBps:     1_000,
		PullBurnRateBps:     500,
	}
}

// Validate - reject out of range parameters
func (config *Configuration) Validate() error {
	if config.K < 1 || config.K > config.N || config.N > maximumShares {
		return fault.ErrInvalidThreshold
	}
	if config.ChunkSize < 1 {
		return fault.ErrInvalidChunkSize
	}
	if config.ChallengeTimeout < 1 {
		return fault.ErrInvalidTimeout
	}
	if 0 == config.ChallengeMinBytes || config.ChallengeMinBytes > config.ChallengeMaxBytes {
		return fault.ErrInvalidByteRange
	}
	if config.EmissionRateBps > basisPoints ||
		config.EmissionDecreaseBps > basisPoints ||
		config.PushBurnRateBps > basisPoints ||
		config.PullBurnRateBps > basisPoints {
		return fault.ErrInvalidBasisPoints
	}
	return nil
}

// PushFee - fee for pushing the given number of bytes
//
// integer multiply, round down to whole MicroUnit
func (config *Configuration) PushFee(byteCount uint64) microunit.MicroUnit {
	return perMB(config.PushFeeRate, byteCount)
}

// PullFee - fee for pulling the given number of bytes
func (config *Configuration) PullFee(byteCount uint64) microunit.MicroUnit {
	return perMB(config.PullFeeRate, byteCount)
}

// BandwidthReward - reward for serving the given number of bytes
func (config *Configuration) BandwidthReward(byteCount uint64) microunit.MicroUnit {
	return perMB(config.BandwidthRate, byteCount)
}

// PushBurn - the part of a push fee that is burned
func (config *Configuration) PushBurn(fee microunit.MicroUnit) microunit.MicroUnit {
	return applyBps(fee, config.PushBurnRateBps)
}

// PullBurn - the part of a pull fee that is burned
func (config *Configuration) PullBurn(fee microunit.MicroUnit) microunit.MicroUnit {
	return applyBps(fee, config.PullBurnRateBps)
}

func perMB(rate microunit.MicroUnit, byteCount uint64) microunit.MicroUnit {
	return microunit.MicroUnit(rate.Uint64() * byteCount / bytesPerMB)
}

func applyBps(amount microunit.MicroUnit, bps uint32) microunit.MicroUnit {
	return microunit.MicroUnit(amount.Uint64() * uint64(bps) / basisPoints)
}
