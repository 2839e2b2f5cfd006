// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/gitcoin-inc/gitcoind/configuration"
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/microunit"
)

// divisor for basis point rates
const basisPoints = 10_000

// SupplyTracker - circulating and burned token totals
//
// circulating rises on mint, falls on burn and is unchanged by
// transfers; burned only rises
//
// the tracker is owned by a Ledger and guarded by its lock
type SupplyTracker struct {
	circulating         microunit.MicroUnit
	burned              microunit.MicroUnit
	currentYear         uint32
	emissionRateBps     uint32
	emissionDecreaseBps uint32
}

// NewSupplyTracker - start at the genesis supply
func NewSupplyTracker(config *configuration.Configuration) *SupplyTracker {
	return &SupplyTracker{
		circulating:         config.InitialSupply,
		emissionRateBps:     config.EmissionRateBps,
		emissionDecreaseBps: config.EmissionDecreaseBps,
	}
}

// Circulating - tokens currently in circulation
func (tracker *SupplyTracker) Circulating() microunit.MicroUnit {
	return tracker.circulating
}

// Burned - tokens permanently removed
func (tracker *SupplyTracker) Burned() microunit.MicroUnit {
	return tracker.burned
}

// CurrentYear - number of emission steps applied so far
func (tracker *SupplyTracker) CurrentYear() uint32 {
	return tracker.currentYear
}

// Mint - add tokens to circulation
func (tracker *SupplyTracker) Mint(amount microunit.MicroUnit) error {
	if tracker.circulating+amount < tracker.circulating {
		return fault.ErrBalanceOverflow
	}
	tracker.circulating += amount
	return nil
}

// Burn - remove tokens from circulation
func (tracker *SupplyTracker) Burn(amount microunit.MicroUnit) error {
	if tracker.circulating < amount {
		return fault.ErrInsufficientBalance
	}
	tracker.circulating -= amount
	tracker.burned += amount
	return nil
}

// EmissionRateBps - emission rate for a given year in basis points
//
// the annual rate decays linearly to zero:
//   rate(y) = max(0, emission_rate − y · emission_decrease)
func (tracker *SupplyTracker) EmissionRateBps(year uint32) uint32 {
	decrease := uint64(tracker.emissionDecreaseBps) * uint64(year)
	if decrease >= uint64(tracker.emissionRateBps) {
		return 0
	}
	return tracker.emissionRateBps - uint32(decrease)
}

// AdvanceYear - apply one emission step and move to the next year
//
// returns the newly emitted amount:
//   emitted = circulating · rate(year) / 10000
func (tracker *SupplyTracker) AdvanceYear() (microunit.MicroUnit, error) {
	rate := tracker.EmissionRateBps(tracker.currentYear)
	emitted := microunit.MicroUnit(tracker.circulating.Uint64() * uint64(rate) / basisPoints)

	err := tracker.Mint(emitted)
	if nil != err {
		return 0, err
	}
	tracker.currentYear += 1
	return emitted, nil
}
