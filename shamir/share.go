// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamir

import (
	"encoding/hex"
	"encoding/json"

	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/field"
)

// Share - one point of one 32-byte block of a split secret
//
// invariant: x is the share id as a field element
type Share struct {
	ShareId    uint8
	BlockIndex uint32
	X          field.Element
	Y          field.Element
}

// wire form of a share: coordinates as 64 character hex
type shareJSON struct {
	ShareId    uint8  `json:"share_id"`
	BlockIndex uint32 `json:"block_index"`
	X          string `json:"x"`
	Y          string `json:"y"`
}

// MarshalJSON - encode a share for the wire
func (share Share) MarshalJSON() ([]byte, error) {
	return json.Marshal(shareJSON{
		ShareId:    share.ShareId,
		BlockIndex: share.BlockIndex,
		X:          share.X.String(),
		Y:          share.Y.String(),
	})
}

// UnmarshalJSON - decode a share from the wire
func (share *Share) UnmarshalJSON(buffer []byte) error {
	wire := shareJSON{}
	err := json.Unmarshal(buffer, &wire)
	if nil != err {
		return err
	}

	x, err := elementFromHex(wire.X)
	if nil != err {
		return err
	}
	y, err := elementFromHex(wire.Y)
	if nil != err {
		return err
	}

	share.ShareId = wire.ShareId
	share.BlockIndex = wire.BlockIndex
	share.X = x
	share.Y = y
	return nil
}

func elementFromHex(s string) (field.Element, error) {
	if 2*field.Length != len(s) {
		return field.Element{}, fault.ErrInvalidElementLength
	}
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return field.Element{}, err
	}
	return field.FromBytes(buffer)
}
