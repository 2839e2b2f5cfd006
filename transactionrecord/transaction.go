// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transactionrecord - the economic events of the ledger
package transactionrecord

import (
	"github.com/google/uuid"

	"github.com/gitcoin-inc/gitcoind/account"
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/microunit"
)

// TagType - type code for transactions
type TagType uint8

// enumerate the possible transaction record types
// this is encoded as a single byte in the packed form
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	// valid record types
	PushFeeTag         = TagType(iota) // user pays to push repository data
	PullFeeTag         = TagType(iota) // user pays to pull repository data
	StorageRewardTag   = TagType(iota) // node earns for holding fragments
	ChallengeRewardTag = TagType(iota) // node earns for a passed challenge
	BandwidthRewardTag = TagType(iota) // node earns for serving data
	TransferTag        = TagType(iota) // value moves between two addresses
	BurnTag            = TagType(iota) // value leaves circulation
	MintTag            = TagType(iota) // value enters circulation

	// this item must be last
	InvalidTag = TagType(iota)
)

var tagNames = []string{
	"Null",
	"PushFee",
	"PullFee",
	"StorageReward",
	"ChallengeReward",
	"BandwidthReward",
	"Transfer",
	"Burn",
	"Mint",
}

// String - tag name for use by the fmt package (for %s)
func (tag TagType) String() string {
	if tag >= InvalidTag {
		return "*Unknown*"
	}
	return tagNames[tag]
}

// IsReward - the tags whose effect is a supply-increasing credit
func (tag TagType) IsReward() bool {
	switch tag {
	case StorageRewardTag, ChallengeRewardTag, BandwidthRewardTag:
		return true
	default:
		return false
	}
}

// IsFee - the tags whose effect is a transfer paying for service
func (tag TagType) IsFee() bool {
	switch tag {
	case PushFeeTag, PullFeeTag:
		return true
	default:
		return false
	}
}

// Transaction - one economic event
//
// From is absent on Mint and rewards, To is absent on Burn,
// Transfer and fees require both
type Transaction struct {
	TxId      string              `json:"txId"`
	TxType    TagType             `json:"txType"`
	From      *account.Address    `json:"from"`
	To        *account.Address    `json:"to"`
	Amount    microunit.MicroUnit `json:"amount,string"`
	Metadata  string              `json:"metadata"`
	Timestamp int64               `json:"timestamp"`
	Signature account.Signature   `json:"signature,omitempty"`
}

// New - create an unsigned transaction with a fresh UUIDv4 id
func New(txType TagType, from *account.Address, to *account.Address, amount microunit.MicroUnit, metadata string, timestamp int64) *Transaction {
	return &Transaction{
		TxId:      uuid.New().String(),
		TxType:    txType,
		From:      from,
		To:        to,
		Amount:    amount,
		Metadata:  metadata,
		Timestamp: timestamp,
	}
}

// Validate - check the per-type address requirements
func (tx *Transaction) Validate() error {
	if "" == tx.TxId {
		return fault.ErrInvalidTransaction
	}
	if NullTag == tx.TxType || tx.TxType >= InvalidTag {
		return fault.ErrInvalidTransaction
	}

	switch {
	case MintTag == tx.TxType || tx.TxType.IsReward():
		if nil == tx.To || nil != tx.From {
			return fault.ErrInvalidTransaction
		}
	case BurnTag == tx.TxType:
		if nil == tx.From || nil != tx.To {
			return fault.ErrInvalidTransaction
		}
	default: // Transfer and fees
		if nil == tx.From || nil == tx.To {
			return fault.ErrInvalidTransaction
		}
	}

	if nil != tx.From {
		if err := tx.From.Validate(); nil != err {
			return err
		}
	}
	if nil != tx.To {
		if err := tx.To.Validate(); nil != err {
			return err
		}
	}
	return nil
}

// Sign - fill in the signature over the packed form
func (tx *Transaction) Sign(keyPair *account.KeyPair) error {
	packed, err := tx.Pack()
	if nil != err {
		return err
	}
	tx.Signature = keyPair.Sign(packed)
	return nil
}

// CheckSignature - verify the signature over the packed form
func (tx *Transaction) CheckSignature(publicKey account.PublicKey) error {
	packed, err := tx.Pack()
	if nil != err {
		return err
	}
	return account.Verify(publicKey, packed, tx.Signature)
}
