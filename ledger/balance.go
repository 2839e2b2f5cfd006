// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/gitcoin-inc/gitcoind/account"
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/microunit"
)

// BalanceTracker - per address balances
//
// an absent address has a zero balance, no balance can go negative
//
// the tracker is owned by a Ledger and guarded by its lock, it has
// no locking of its own
type BalanceTracker struct {
	balances map[account.Address]microunit.MicroUnit
}

// NewBalanceTracker - an empty set of balances
func NewBalanceTracker() *BalanceTracker {
	return &BalanceTracker{
		balances: make(map[account.Address]microunit.MicroUnit),
	}
}

// Balance - current balance of an address, zero when unknown
func (tracker *BalanceTracker) Balance(address account.Address) microunit.MicroUnit {
	return tracker.balances[address]
}

// Credit - add to an address
//
// overflow is a hard error, not a silent wrap; it is unreachable
// while the supply invariants hold
func (tracker *BalanceTracker) Credit(address account.Address, amount microunit.MicroUnit) error {
	current := tracker.balances[address]
	if current+amount < current {
		return fault.ErrBalanceOverflow
	}
	tracker.balances[address] = current + amount
	return nil
}

// Debit - subtract from an address
func (tracker *BalanceTracker) Debit(address account.Address, amount microunit.MicroUnit) error {
	current := tracker.balances[address]
	if current < amount {
		return fault.ErrInsufficientBalance
	}
	tracker.balances[address] = current - amount
	return nil
}

// Transfer - atomically debit one address and credit another
//
// on any failure neither balance changes
func (tracker *BalanceTracker) Transfer(from account.Address, to account.Address, amount microunit.MicroUnit) error {
	// check the credit side first so a failure leaves no mutation
	destination := tracker.balances[to]
	if destination+amount < destination {
		return fault.ErrBalanceOverflow
	}
	err := tracker.Debit(from, amount)
	if nil != err {
		return err
	}
	return tracker.Credit(to, amount)
}
