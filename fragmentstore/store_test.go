// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fragmentstore

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/gitcoin-inc/gitcoind/avail"
	"github.com/gitcoin-inc/gitcoind/configuration"
	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
)

func TestMain(m *testing.M) {
	curPath := os.Getenv("PWD")
	logConfig := logger.Configuration{
		Directory: curPath,
		File:      "fragmentstore-test.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logConfig); err != nil {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}
	rc := m.Run()
	logger.Finalise()
	os.Remove(filepath.Join(curPath, "fragmentstore-test.log"))
	os.Exit(rc)
}

var testRepo = digest.NewDigest([]byte("test repository"))

func openTestStore(t *testing.T) *FragmentStore {
	store, err := Open(InMemory)
	assert.NoError(t, err, "open error")
	return store
}

func TestStoreGetFragment(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	data := []byte("share payload bytes")
	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, data), "store error")

	back, err := store.GetFragment(testRepo, 0, 1)
	assert.NoError(t, err, "get error")
	assert.Equal(t, data, back, "payload round trip")

	assert.Equal(t, uint64(1), store.StoredCount(), "stored count")
}

func TestGetFragmentNotFound(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	_, err := store.GetFragment(testRepo, 9, 9)
	assert.Equal(t, fault.ErrFragmentNotFound, err, "missing fragment found")
}

func TestStoreFragmentOverwrite(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("first")), "store error")
	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("second")), "overwrite error")

	back, err := store.GetFragment(testRepo, 0, 1)
	assert.NoError(t, err, "get error")
	assert.Equal(t, []byte("second"), back, "overwrite lost")

	records, err := store.ListFragments(testRepo)
	assert.NoError(t, err, "list error")
	assert.Equal(t, 1, len(records), "overwrite duplicated the row")
}

func TestListFragmentsOrder(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	// insert out of order
	assert.NoError(t, store.StoreFragment(testRepo, 1, 2, []byte("f1 s2")))
	assert.NoError(t, store.StoreFragment(testRepo, 0, 3, []byte("f0 s3")))
	assert.NoError(t, store.StoreFragment(testRepo, 1, 1, []byte("f1 s1")))
	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("f0 s1")))

	// another repository is not listed
	otherRepo := digest.NewDigest([]byte("other repository"))
	assert.NoError(t, store.StoreFragment(otherRepo, 0, 1, []byte("other")))

	records, err := store.ListFragments(testRepo)
	assert.NoError(t, err, "list error")
	assert.Equal(t, 4, len(records), "record count")

	expected := [][2]uint32{{0, 1}, {0, 3}, {1, 1}, {1, 2}}
	for i, record := range records {
		assert.Equal(t, expected[i][0], record.FragmentId, "fragment order at %d", i)
		assert.Equal(t, uint8(expected[i][1]), record.ShareId, "share order at %d", i)
		assert.Equal(t, testRepo, record.RepoHash, "repo hash at %d", i)
		assert.Equal(t, digest.NewDigest(record.Data), record.DataHash, "data hash at %d", i)
		assert.True(t, record.StoredAt > 0, "stored-at timestamp at %d", i)
		assert.Nil(t, record.LastChallengedAt, "fresh fragment already challenged at %d", i)
	}
}

func TestDeleteFragment(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("data")), "store error")
	assert.NoError(t, store.DeleteFragment(testRepo, 0, 1), "delete error")

	_, err := store.GetFragment(testRepo, 0, 1)
	assert.Equal(t, fault.ErrFragmentNotFound, err, "deleted fragment found")

	// deleting again is an error, not a silent success
	err = store.DeleteFragment(testRepo, 0, 1)
	assert.Equal(t, fault.ErrFragmentNotFound, err, "double delete accepted")
}

func TestTouchLastChallenged(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("data")), "store error")
	assert.NoError(t, store.TouchLastChallenged(testRepo, 0, 1, 1_700_000_123), "touch error")

	records, err := store.ListFragments(testRepo)
	assert.NoError(t, err, "list error")
	assert.Equal(t, 1, len(records), "record count")
	assert.NotNil(t, records[0].LastChallengedAt, "challenge marker missing")
	assert.Equal(t, int64(1_700_000_123), *records[0].LastChallengedAt, "challenge marker value")

	err = store.TouchLastChallenged(testRepo, 5, 5, 1_700_000_123)
	assert.Equal(t, fault.ErrFragmentNotFound, err, "missing fragment touched")
}

// a corrupted payload is detected on read-back
func TestGetFragmentHashMismatch(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("pristine")), "store error")

	// corrupt the payload behind the store's back
	_, err := store.database.Exec(
		"UPDATE fragments SET data = ? WHERE fragment_id = 0 AND share_id = 1",
		[]byte("tampered"))
	assert.NoError(t, err, "tamper error")

	_, err = store.GetFragment(testRepo, 0, 1)
	assert.Equal(t, fault.ErrHashMismatch, err, "tampered payload accepted")
}

func TestRecordChallenge(t *testing.T) {

	store := openTestStore(t)
	defer store.Close()

	config := configuration.Default()
	challenge, err := avail.NewChallenge(rand.Reader, testRepo, 2, 1, 100_000, config)
	assert.NoError(t, err, "challenge error")

	assert.NoError(t, store.RecordChallenge(challenge, avail.OutcomePass), "record error")

	other, err := avail.NewChallenge(rand.Reader, testRepo, 2, 1, 100_000, config)
	assert.NoError(t, err, "challenge error")
	assert.NoError(t, store.RecordChallenge(other, avail.OutcomeTimeout), "record error")

	records, err := store.ListChallenges(testRepo)
	assert.NoError(t, err, "list error")
	assert.Equal(t, 2, len(records), "record count")

	assert.Equal(t, challenge.ChallengeId, records[0].ChallengeId, "challenge id")
	assert.Equal(t, avail.OutcomePass, records[0].Outcome, "outcome")
	assert.Equal(t, challenge.RangeStart, records[0].RangeStart, "range start")
	assert.Equal(t, challenge.RangeLen, records[0].RangeLen, "range length")
	assert.Equal(t, avail.OutcomeTimeout, records[1].Outcome, "outcome")

	// the audit log never updates: a reused id is rejected by the schema
	err = store.RecordChallenge(challenge, avail.OutcomeFail)
	assert.Error(t, err, "duplicate audit row accepted")
	assert.True(t, fault.IsErrDatabase(err), "wrong error class")
}

// closing and reopening a file backed store keeps the rows
func TestFileBackedPersistence(t *testing.T) {

	databasePath := filepath.Join(os.TempDir(), "fragmentstore-test.db")
	os.Remove(databasePath)
	defer os.Remove(databasePath)

	store, err := Open(databasePath)
	assert.NoError(t, err, "open error")
	assert.NoError(t, store.StoreFragment(testRepo, 0, 1, []byte("durable")), "store error")
	assert.NoError(t, store.Close(), "close error")

	// idempotent initialisation on an existing file
	reopened, err := Open(databasePath)
	assert.NoError(t, err, "reopen error")
	defer reopened.Close()

	back, err := reopened.GetFragment(testRepo, 0, 1)
	assert.NoError(t, err, "get error")
	assert.Equal(t, []byte("durable"), back, "payload lost across reopen")
}
