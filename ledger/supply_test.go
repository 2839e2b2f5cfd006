// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitcoin-inc/gitcoind/configuration"
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/microunit"
)

func TestSupplyGenesis(t *testing.T) {

	tracker := NewSupplyTracker(configuration.Default())
	assert.Equal(t, 100_000_000*microunit.PerUnit, tracker.Circulating())
	assert.Equal(t, microunit.MicroUnit(0), tracker.Burned())
	assert.Equal(t, uint32(0), tracker.CurrentYear())
}

func TestSupplyMintBurn(t *testing.T) {

	config := configuration.Default()
	config.InitialSupply = 1_000
	tracker := NewSupplyTracker(config)

	assert.NoError(t, tracker.Mint(500))
	assert.Equal(t, microunit.MicroUnit(1_500), tracker.Circulating())

	assert.NoError(t, tracker.Burn(300))
	assert.Equal(t, microunit.MicroUnit(1_200), tracker.Circulating())
	assert.Equal(t, microunit.MicroUnit(300), tracker.Burned())

	// burning more than circulates is rejected without mutation
	err := tracker.Burn(5_000)
	assert.Equal(t, fault.ErrInsufficientBalance, err, "supply underflow accepted")
	assert.Equal(t, microunit.MicroUnit(1_200), tracker.Circulating())
	assert.Equal(t, microunit.MicroUnit(300), tracker.Burned())
}

func TestEmissionRate(t *testing.T) {

	tracker := NewSupplyTracker(configuration.Default())

	// 2.00% decaying 0.10% per year, zero from year 20 on
	assert.Equal(t, uint32(200), tracker.EmissionRateBps(0))
	assert.Equal(t, uint32(190), tracker.EmissionRateBps(1))
	assert.Equal(t, uint32(10), tracker.EmissionRateBps(19))
	assert.Equal(t, uint32(0), tracker.EmissionRateBps(20))
	assert.Equal(t, uint32(0), tracker.EmissionRateBps(1_000))
}

func TestAdvanceYear(t *testing.T) {

	config := configuration.Default()
	config.InitialSupply = 1_000_000
	tracker := NewSupplyTracker(config)

	// year 0: 2% of 1,000,000
	emitted, err := tracker.AdvanceYear()
	assert.NoError(t, err, "advance error")
	assert.Equal(t, microunit.MicroUnit(20_000), emitted)
	assert.Equal(t, microunit.MicroUnit(1_020_000), tracker.Circulating())
	assert.Equal(t, uint32(1), tracker.CurrentYear())

	// year 1: 1.9% of the new circulating supply
	emitted, err = tracker.AdvanceYear()
	assert.NoError(t, err, "advance error")
	assert.Equal(t, microunit.MicroUnit(19_380), emitted)
	assert.Equal(t, uint32(2), tracker.CurrentYear())
}

func TestAdvanceYearAfterDecay(t *testing.T) {

	config := configuration.Default()
	config.InitialSupply = 1_000_000
	tracker := NewSupplyTracker(config)

	for year := 0; year < 25; year += 1 {
		_, err := tracker.AdvanceYear()
		assert.NoError(t, err, "advance error at year %d", year)
	}

	// emission has bottomed out
	emitted, err := tracker.AdvanceYear()
	assert.NoError(t, err, "advance error")
	assert.Equal(t, microunit.MicroUnit(0), emitted)
}
