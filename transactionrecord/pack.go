// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"encoding/binary"

	"github.com/gitcoin-inc/gitcoind/account"
	"github.com/gitcoin-inc/gitcoind/digest"
)

// Packed - the canonical signable byte form of a transaction
type Packed []byte

// Pack - canonical encoding of the signable fields
//
// fields are concatenated in this fixed order with explicit framing:
//   tx_id      utf8 bytes
//   tx_type    one byte tag
//   from       0x00, or 0x01 followed by the 32 raw address bytes
//   to         0x00, or 0x01 followed by the 32 raw address bytes
//   amount     u64 big endian
//   metadata   length u32 big endian, then utf8 bytes
//   timestamp  i64 big endian
//
// the signature is never part of the packed form
//
// this order must never change
func (tx *Transaction) Pack() (Packed, error) {
	err := tx.Validate()
	if nil != err {
		return nil, err
	}

	message := append(Packed{}, tx.TxId...)
	message = append(message, byte(tx.TxType))

	message, err = appendAddress(message, tx.From)
	if nil != err {
		return nil, err
	}
	message, err = appendAddress(message, tx.To)
	if nil != err {
		return nil, err
	}

	message = appendUint64(message, tx.Amount.Uint64())
	message = appendUint32(message, uint32(len(tx.Metadata)))
	message = append(message, tx.Metadata...)
	message = appendUint64(message, uint64(tx.Timestamp))

	return message, nil
}

// Hash - SHA-256 of the packed form
func (tx *Transaction) Hash() (digest.Digest, error) {
	packed, err := tx.Pack()
	if nil != err {
		return digest.Digest{}, err
	}
	return digest.NewDigest(packed), nil
}

// optional address: presence byte then raw bytes
func appendAddress(buffer Packed, address *account.Address) (Packed, error) {
	if nil == address {
		return append(buffer, 0x00), nil
	}
	raw, err := address.Bytes()
	if nil != err {
		return nil, err
	}
	buffer = append(buffer, 0x01)
	return append(buffer, raw...), nil
}

func appendUint64(buffer Packed, value uint64) Packed {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], value)
	return append(buffer, b[:]...)
}

func appendUint32(buffer Packed, value uint32) Packed {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], value)
	return append(buffer, b[:]...)
}
