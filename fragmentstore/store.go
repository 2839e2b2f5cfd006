// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fragmentstore - persistent storage of shares with
// integrity metadata
//
// one row per (repo, fragment, share) coordinate plus an append-only
// audit log of challenge events; backed by SQLite, either a file or
// memory selected by the path given at open
package fragmentstore

import (
	"database/sql"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gitcoin-inc/gitcoind/avail"
	"github.com/gitcoin-inc/gitcoind/counter"
	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
)

// InMemory - database path selecting a memory-only store
const InMemory = ":memory:"

// FragmentStore - an open fragment database
type FragmentStore struct {
	sync.RWMutex

	database *sql.DB
	log      *logger.L
	stored   counter.Counter
}

// FragmentRecord - one stored share
type FragmentRecord struct {
	RepoHash         digest.Digest
	FragmentId       uint32
	ShareId          uint8
	Data             []byte
	DataHash         digest.Digest
	StoredAt         int64
	LastChallengedAt *int64
}

// ChallengeRecord - one audited challenge event
type ChallengeRecord struct {
	ChallengeId string
	RepoHash    digest.Digest
	FragmentId  uint32
	ShareId     uint8
	RangeStart  uint64
	RangeLen    uint32
	IssuedAt    int64
	Outcome     string
}

const createSchema = `
CREATE TABLE IF NOT EXISTS fragments (
    repo_hash          BLOB NOT NULL,
    fragment_id        INTEGER NOT NULL,
    share_id           INTEGER NOT NULL,
    data               BLOB NOT NULL,
    data_hash          BLOB NOT NULL,
    stored_at          INTEGER NOT NULL,
    last_challenged_at INTEGER,
    PRIMARY KEY (repo_hash, fragment_id, share_id)
);

CREATE TABLE IF NOT EXISTS challenges (
    challenge_id TEXT PRIMARY KEY,
    repo_hash    BLOB NOT NULL,
    fragment_id  INTEGER NOT NULL,
    share_id     INTEGER NOT NULL,
    range_start  INTEGER NOT NULL,
    range_len    INTEGER NOT NULL,
    issued_at    INTEGER NOT NULL,
    outcome      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fragments_repo  ON fragments (repo_hash);
CREATE INDEX IF NOT EXISTS idx_challenges_repo ON challenges (repo_hash, fragment_id);
`

// Open - open or create a fragment store
//
// initialisation is idempotent, pass InMemory for a transient store
func Open(databasePath string) (*FragmentStore, error) {
	database, err := sql.Open("sqlite3", databasePath)
	if nil != err {
		return nil, fault.DatabaseError{Operation: "Open", Err: err}
	}

	_, err = database.Exec(createSchema)
	if nil != err {
		database.Close()
		return nil, fault.DatabaseError{Operation: "Open", Err: err}
	}

	store := &FragmentStore{
		database: database,
		log:      logger.New("fragmentstore"),
	}
	store.log.Infof("opened: %q", databasePath)
	return store, nil
}

// Close - release the database handle
func (store *FragmentStore) Close() error {
	store.Lock()
	defer store.Unlock()
	return store.database.Close()
}

// StoreFragment - insert or overwrite one share
//
// the integrity hash is recomputed from the payload and the stored-at
// timestamp is reset; an overwrite also clears the challenge marker
func (store *FragmentStore) StoreFragment(repoHash digest.Digest, fragmentId uint32, shareId uint8, data []byte) error {
	store.Lock()
	defer store.Unlock()

	dataHash := digest.NewDigest(data)

	_, err := store.database.Exec(
		`INSERT OR REPLACE INTO fragments
		 (repo_hash, fragment_id, share_id, data, data_hash, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		repoHash[:], fragmentId, shareId, data, dataHash[:], time.Now().Unix())
	if nil != err {
		return fault.DatabaseError{Operation: "StoreFragment", Err: err}
	}

	store.stored.Increment()
	store.log.Debugf("stored: repo: %s  fragment: %d  share: %d  bytes: %d",
		repoHash, fragmentId, shareId, len(data))
	return nil
}

// GetFragment - payload bytes of one share
//
// the payload is verified against its integrity hash on the way out
func (store *FragmentStore) GetFragment(repoHash digest.Digest, fragmentId uint32, shareId uint8) ([]byte, error) {
	store.RLock()
	defer store.RUnlock()

	var data []byte
	var hashBytes []byte
	err := store.database.QueryRow(
		`SELECT data, data_hash FROM fragments
		 WHERE repo_hash = ? AND fragment_id = ? AND share_id = ?`,
		repoHash[:], fragmentId, shareId).Scan(&data, &hashBytes)
	if sql.ErrNoRows == err {
		return nil, fault.ErrFragmentNotFound
	}
	if nil != err {
		return nil, fault.DatabaseError{Operation: "GetFragment", Err: err}
	}

	var storedHash digest.Digest
	err = digest.DigestFromBytes(&storedHash, hashBytes)
	if nil != err {
		return nil, err
	}
	if digest.NewDigest(data) != storedHash {
		return nil, fault.ErrHashMismatch
	}
	return data, nil
}

// ListFragments - all shares of one repository
//
// ordered by (fragment id, share id)
func (store *FragmentStore) ListFragments(repoHash digest.Digest) ([]FragmentRecord, error) {
	store.RLock()
	defer store.RUnlock()

	rows, err := store.database.Query(
		`SELECT repo_hash, fragment_id, share_id, data, data_hash, stored_at, last_challenged_at
		 FROM fragments WHERE repo_hash = ?
		 ORDER BY fragment_id, share_id`,
		repoHash[:])
	if nil != err {
		return nil, fault.DatabaseError{Operation: "ListFragments", Err: err}
	}
	defer rows.Close()

	records := []FragmentRecord(nil)
	for rows.Next() {
		var record FragmentRecord
		var repoBytes []byte
		var hashBytes []byte
		var lastChallenged sql.NullInt64

		err = rows.Scan(&repoBytes, &record.FragmentId, &record.ShareId,
			&record.Data, &hashBytes, &record.StoredAt, &lastChallenged)
		if nil != err {
			return nil, fault.DatabaseError{Operation: "ListFragments", Err: err}
		}

		err = digest.DigestFromBytes(&record.RepoHash, repoBytes)
		if nil != err {
			return nil, err
		}
		err = digest.DigestFromBytes(&record.DataHash, hashBytes)
		if nil != err {
			return nil, err
		}
		if lastChallenged.Valid {
			when := lastChallenged.Int64
			record.LastChallengedAt = &when
		}
		records = append(records, record)
	}
	if err := rows.Err(); nil != err {
		return nil, fault.DatabaseError{Operation: "ListFragments", Err: err}
	}
	return records, nil
}

// DeleteFragment - remove one share
//
// deleting an absent coordinate is an error, not a silent success
func (store *FragmentStore) DeleteFragment(repoHash digest.Digest, fragmentId uint32, shareId uint8) error {
	store.Lock()
	defer store.Unlock()

	result, err := store.database.Exec(
		`DELETE FROM fragments
		 WHERE repo_hash = ? AND fragment_id = ? AND share_id = ?`,
		repoHash[:], fragmentId, shareId)
	if nil != err {
		return fault.DatabaseError{Operation: "DeleteFragment", Err: err}
	}

	deleted, err := result.RowsAffected()
	if nil != err {
		return fault.DatabaseError{Operation: "DeleteFragment", Err: err}
	}
	if 0 == deleted {
		return fault.ErrFragmentNotFound
	}
	return nil
}

// TouchLastChallenged - mark the time a share was last challenged
//
// the only in-place update the fragment table ever sees
func (store *FragmentStore) TouchLastChallenged(repoHash digest.Digest, fragmentId uint32, shareId uint8, when int64) error {
	store.Lock()
	defer store.Unlock()

	result, err := store.database.Exec(
		`UPDATE fragments SET last_challenged_at = ?
		 WHERE repo_hash = ? AND fragment_id = ? AND share_id = ?`,
		when, repoHash[:], fragmentId, shareId)
	if nil != err {
		return fault.DatabaseError{Operation: "TouchLastChallenged", Err: err}
	}

	touched, err := result.RowsAffected()
	if nil != err {
		return fault.DatabaseError{Operation: "TouchLastChallenged", Err: err}
	}
	if 0 == touched {
		return fault.ErrFragmentNotFound
	}
	return nil
}

// RecordChallenge - append one challenge event to the audit log
//
// rows are only ever inserted, never updated
func (store *FragmentStore) RecordChallenge(challenge *avail.Challenge, outcome string) error {
	store.Lock()
	defer store.Unlock()

	_, err := store.database.Exec(
		`INSERT INTO challenges
		 (challenge_id, repo_hash, fragment_id, share_id, range_start, range_len, issued_at, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		challenge.ChallengeId, challenge.RepoHash[:], challenge.FragmentId,
		challenge.ShareId, int64(challenge.RangeStart), challenge.RangeLen,
		challenge.IssuedAt, outcome)
	if nil != err {
		return fault.DatabaseError{Operation: "RecordChallenge", Err: err}
	}
	return nil
}

// ListChallenges - audited challenge events of one repository
//
// in the order they were recorded
func (store *FragmentStore) ListChallenges(repoHash digest.Digest) ([]ChallengeRecord, error) {
	store.RLock()
	defer store.RUnlock()

	rows, err := store.database.Query(
		`SELECT challenge_id, repo_hash, fragment_id, share_id, range_start, range_len, issued_at, outcome
		 FROM challenges WHERE repo_hash = ?
		 ORDER BY rowid`,
		repoHash[:])
	if nil != err {
		return nil, fault.DatabaseError{Operation: "ListChallenges", Err: err}
	}
	defer rows.Close()

	records := []ChallengeRecord(nil)
	for rows.Next() {
		var record ChallengeRecord
		var repoBytes []byte
		var rangeStart int64

		err = rows.Scan(&record.ChallengeId, &repoBytes, &record.FragmentId,
			&record.ShareId, &rangeStart, &record.RangeLen,
			&record.IssuedAt, &record.Outcome)
		if nil != err {
			return nil, fault.DatabaseError{Operation: "ListChallenges", Err: err}
		}

		err = digest.DigestFromBytes(&record.RepoHash, repoBytes)
		if nil != err {
			return nil, err
		}
		record.RangeStart = uint64(rangeStart)
		records = append(records, record)
	}
	if err := rows.Err(); nil != err {
		return nil, fault.DatabaseError{Operation: "ListChallenges", Err: err}
	}
	return records, nil
}

// StoredCount - fragments written since this store was opened
func (store *FragmentStore) StoredCount() uint64 {
	return store.stored.Uint64()
}
