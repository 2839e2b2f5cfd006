// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamir_test

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/shamir"
)

// select all shares whose id is in the given set
func selectShares(shares []shamir.Share, ids ...uint8) []shamir.Share {
	selected := []shamir.Share(nil)
	for _, share := range shares {
		for _, id := range ids {
			if id == share.ShareId {
				selected = append(selected, share)
			}
		}
	}
	return selected
}

func TestSplitReconstruct(t *testing.T) {

	secret := []byte("hello world! this is 32b secret!")

	shares, err := shamir.Split(rand.Reader, secret, 3, 5)
	assert.NoError(t, err, "split error")

	// one share per recipient per block: 2 blocks after length prefix padding
	assert.Equal(t, 10, len(shares), "share count")

	recovered, err := shamir.Reconstruct(selectShares(shares, 1, 2, 3), 3)
	assert.NoError(t, err, "reconstruct error")
	assert.Equal(t, secret, recovered, "recovered secret")
}

// split [0x42; 1024] with (k, n) = (3, 5) and recover from shares {2, 4, 5}
func TestSplitLargeSecret(t *testing.T) {

	secret := bytes.Repeat([]byte{0x42}, 1024)

	shares, err := shamir.Split(rand.Reader, secret, 3, 5)
	assert.NoError(t, err, "split error")

	recovered, err := shamir.Reconstruct(selectShares(shares, 2, 4, 5), 3)
	assert.NoError(t, err, "reconstruct error")
	assert.Equal(t, secret, recovered, "recovered secret")
}

func TestAnySubsetReconstructs(t *testing.T) {

	secret := []byte("any k of n shares reconstructs")
	k := 3
	n := 6

	shares, err := shamir.Split(rand.Reader, secret, k, n)
	assert.NoError(t, err, "split error")

	subsets := [][]uint8{
		{1, 2, 3},
		{4, 5, 6},
		{1, 4, 6},
		{2, 3, 5},
	}
	for _, ids := range subsets {
		recovered, err := shamir.Reconstruct(selectShares(shares, ids...), k)
		assert.NoError(t, err, "reconstruct error for %v", ids)
		assert.Equal(t, secret, recovered, "recovered secret for %v", ids)
	}
}

// a subset below the threshold must not reconstruct the secret
func TestThreshold(t *testing.T) {

	secret := []byte("below threshold reveals nothing!")

	shares, err := shamir.Split(rand.Reader, secret, 3, 5)
	assert.NoError(t, err, "split error")

	// k-1 shares: rejected outright
	_, err = shamir.Reconstruct(selectShares(shares, 1, 2), 3)
	assert.Equal(t, fault.ErrInsufficientShares, err, "reconstruct with k-1 shares")

	// interpolating k-1 shares with a lowered k produces garbage, not the secret
	recovered, err := shamir.Reconstruct(selectShares(shares, 1, 2), 2)
	if nil == err {
		assert.NotEqual(t, secret, recovered, "k-1 shares recovered the secret")
	}
}

func TestSingleByteSecret(t *testing.T) {

	secret := []byte{0x7f}

	shares, err := shamir.Split(rand.Reader, secret, 2, 3)
	assert.NoError(t, err, "split error")
	assert.Equal(t, 3, len(shares), "share count")

	recovered, err := shamir.Reconstruct(selectShares(shares, 1, 3), 2)
	assert.NoError(t, err, "reconstruct error")
	assert.Equal(t, secret, recovered, "recovered secret")
}

// secret lengths around the block boundary must round trip
func TestPaddingBoundaries(t *testing.T) {

	for _, size := range []int{1, 27, 28, 29, 32, 60, 61, 100, 1024} {
		secret := make([]byte, size)
		for i := 0; i < size; i += 1 {
			secret[i] = byte(i)
		}

		shares, err := shamir.Split(rand.Reader, secret, 3, 5)
		assert.NoError(t, err, "split error at size %d", size)

		recovered, err := shamir.Reconstruct(selectShares(shares, 1, 2, 3), 3)
		assert.NoError(t, err, "reconstruct error at size %d", size)
		assert.Equal(t, secret, recovered, "recovered secret at size %d", size)
	}
}

func TestSplitErrors(t *testing.T) {

	_, err := shamir.Split(rand.Reader, []byte{}, 3, 5)
	assert.Equal(t, fault.ErrEmptySecret, err, "empty secret")

	_, err = shamir.Split(rand.Reader, []byte("x"), 0, 5)
	assert.Equal(t, fault.ErrThresholdTooLow, err, "zero threshold")

	_, err = shamir.Split(rand.Reader, []byte("x"), 5, 3)
	assert.Equal(t, fault.ErrInsufficientShares, err, "n below k")

	_, err = shamir.Split(rand.Reader, []byte("x"), 256, 256)
	assert.Equal(t, fault.ErrThresholdExceedsMax, err, "threshold above 255")
}

func TestReconstructErrors(t *testing.T) {

	secret := []byte("duplicate and mixed share checks")

	shares, err := shamir.Split(rand.Reader, secret, 3, 5)
	assert.NoError(t, err, "split error")

	// duplicated share id
	duplicated := selectShares(shares, 1, 2)
	duplicated = append(duplicated, selectShares(shares, 1)...)
	_, err = shamir.Reconstruct(duplicated, 3)
	assert.Equal(t, fault.ErrDuplicateShareIds, err, "duplicate share ids")

	// gap in block indices
	gap := []shamir.Share(nil)
	for _, share := range selectShares(shares, 1, 2, 3) {
		if 0 != share.BlockIndex {
			gap = append(gap, share)
		}
	}
	_, err = shamir.Reconstruct(gap, 3)
	assert.Equal(t, fault.ErrInconsistentBlocks, err, "missing block zero")

	_, err = shamir.Reconstruct(nil, 3)
	assert.Equal(t, fault.ErrInsufficientShares, err, "no shares")
}

// distinct subsets must agree on the recovered secret
func TestSubsetsAgree(t *testing.T) {

	secret := []byte("same result from any k shares!!")

	shares, err := shamir.Split(rand.Reader, secret, 3, 6)
	assert.NoError(t, err, "split error")

	r1, err := shamir.Reconstruct(selectShares(shares, 1, 2, 3), 3)
	assert.NoError(t, err)
	r2, err := shamir.Reconstruct(selectShares(shares, 4, 5, 6), 3)
	assert.NoError(t, err)
	r3, err := shamir.Reconstruct(selectShares(shares, 1, 4, 6), 3)
	assert.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, r2, r3)
	assert.Equal(t, secret, r1)
}

func TestShareJSON(t *testing.T) {

	shares, err := shamir.Split(rand.Reader, []byte("wire format"), 2, 3)
	assert.NoError(t, err, "split error")

	buffer, err := json.Marshal(shares)
	assert.NoError(t, err, "marshal error")

	back := []shamir.Share(nil)
	err = json.Unmarshal(buffer, &back)
	assert.NoError(t, err, "unmarshal error")
	assert.Equal(t, len(shares), len(back), "share count")

	recovered, err := shamir.Reconstruct(selectShares(back, 1, 3), 2)
	assert.NoError(t, err, "reconstruct error")
	assert.Equal(t, []byte("wire format"), recovered, "recovered secret")
}
