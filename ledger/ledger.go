// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - append-only transaction log with balance and
// supply tracking
//
// the log is persisted in SQLite; opening a ledger replays every
// stored transaction in insertion order to rebuild the in-memory
// balance and supply state, so a reopened ledger is always identical
// to the one that was closed
package ledger

import (
	"database/sql"
	"sync"

	"github.com/bitmark-inc/logger"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gitcoin-inc/gitcoind/account"
	"github.com/gitcoin-inc/gitcoind/configuration"
	"github.com/gitcoin-inc/gitcoind/digest"
	"github.com/gitcoin-inc/gitcoind/fault"
	"github.com/gitcoin-inc/gitcoind/merkle"
	"github.com/gitcoin-inc/gitcoind/microunit"
	"github.com/gitcoin-inc/gitcoind/transactionrecord"
)

// InMemory - database path selecting a memory-only ledger
const InMemory = ":memory:"

// Ledger - the append-only transaction log
type Ledger struct {
	sync.RWMutex

	database *sql.DB
	log      *logger.L
	balances *BalanceTracker
	supply   *SupplyTracker
	txIds    map[string]struct{}
}

const createSchema = `
CREATE TABLE IF NOT EXISTS transactions (
    tx_id      TEXT PRIMARY KEY,
    tx_type    INTEGER NOT NULL,
    from_addr  TEXT,
    to_addr    TEXT,
    amount     INTEGER NOT NULL,
    metadata   TEXT NOT NULL,
    timestamp  INTEGER NOT NULL,
    signature  BLOB
);
CREATE INDEX IF NOT EXISTS idx_tx_from ON transactions (from_addr);
CREATE INDEX IF NOT EXISTS idx_tx_to   ON transactions (to_addr);
`

const selectColumns = "tx_id, tx_type, from_addr, to_addr, amount, metadata, timestamp, signature"

// Open - open or create a ledger
//
// pass InMemory as the database path for a transient ledger
func Open(databasePath string, config *configuration.Configuration) (*Ledger, error) {
	err := config.Validate()
	if nil != err {
		return nil, err
	}

	database, err := sql.Open("sqlite3", databasePath)
	if nil != err {
		return nil, fault.DatabaseError{Operation: "Open", Err: err}
	}

	_, err = database.Exec(createSchema)
	if nil != err {
		database.Close()
		return nil, fault.DatabaseError{Operation: "Open", Err: err}
	}

	l := &Ledger{
		database: database,
		log:      logger.New("ledger"),
		balances: NewBalanceTracker(),
		supply:   NewSupplyTracker(config),
		txIds:    make(map[string]struct{}),
	}

	err = l.replay()
	if nil != err {
		database.Close()
		return nil, err
	}

	l.log.Infof("opened: %q  transactions: %d", databasePath, len(l.txIds))
	return l, nil
}

// Close - release the database handle
func (l *Ledger) Close() error {
	l.Lock()
	defer l.Unlock()
	return l.database.Close()
}

// rebuild balance and supply state from the stored log
func (l *Ledger) replay() error {
	rows, err := l.database.Query("SELECT " + selectColumns + " FROM transactions ORDER BY rowid")
	if nil != err {
		return fault.DatabaseError{Operation: "replay", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if nil != err {
			return err
		}
		err = l.apply(tx)
		if nil != err {
			// a stored log can only fail to apply if the file was edited
			return err
		}
		l.txIds[tx.TxId] = struct{}{}
	}
	return rows.Err()
}

// Append - add one transaction to the log
//
// the sequence is atomic under the ledger lock:
//   1. reject a duplicate tx id
//   2. reject an infeasible effect
//   3. persist the row
//   4. apply the effect to balances and supply
func (l *Ledger) Append(tx *transactionrecord.Transaction) error {
	err := tx.Validate()
	if nil != err {
		return err
	}

	l.Lock()
	defer l.Unlock()

	if _, ok := l.txIds[tx.TxId]; ok {
		return fault.ErrDuplicateTransaction
	}

	err = l.feasible(tx)
	if nil != err {
		return err
	}

	_, err = l.database.Exec(
		"INSERT INTO transactions ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		tx.TxId,
		int(tx.TxType),
		addressColumn(tx.From),
		addressColumn(tx.To),
		int64(tx.Amount),
		tx.Metadata,
		tx.Timestamp,
		signatureColumn(tx.Signature),
	)
	if nil != err {
		return fault.DatabaseError{Operation: "Append", Err: err}
	}

	// cannot fail after the feasibility check above
	err = l.apply(tx)
	if nil != err {
		l.log.Criticalf("apply after feasibility check failed: %s", err)
		return err
	}

	l.txIds[tx.TxId] = struct{}{}
	return nil
}

// check that applying would not break an invariant, without mutating
func (l *Ledger) feasible(tx *transactionrecord.Transaction) error {
	switch {
	case transactionrecord.MintTag == tx.TxType || tx.TxType.IsReward():
		if l.supply.Circulating()+tx.Amount < l.supply.Circulating() {
			return fault.ErrBalanceOverflow
		}
		balance := l.balances.Balance(*tx.To)
		if balance+tx.Amount < balance {
			return fault.ErrBalanceOverflow
		}

	case transactionrecord.BurnTag == tx.TxType:
		if l.balances.Balance(*tx.From) < tx.Amount {
			return fault.ErrInsufficientBalance
		}
		if l.supply.Circulating() < tx.Amount {
			return fault.ErrInsufficientBalance
		}

	default: // Transfer and fees
		if l.balances.Balance(*tx.From) < tx.Amount {
			return fault.ErrInsufficientBalance
		}
		balance := l.balances.Balance(*tx.To)
		if balance+tx.Amount < balance {
			return fault.ErrBalanceOverflow
		}
	}
	return nil
}

// apply the balance and supply effect of one transaction
//
// effect by type:
//   Mint and rewards  credit to, increase supply
//   Burn              debit from, decrease supply
//   Transfer and fees debit from, credit to
func (l *Ledger) apply(tx *transactionrecord.Transaction) error {
	switch {
	case transactionrecord.MintTag == tx.TxType || tx.TxType.IsReward():
		err := l.supply.Mint(tx.Amount)
		if nil != err {
			return err
		}
		return l.balances.Credit(*tx.To, tx.Amount)

	case transactionrecord.BurnTag == tx.TxType:
		err := l.balances.Debit(*tx.From, tx.Amount)
		if nil != err {
			return err
		}
		return l.supply.Burn(tx.Amount)

	default: // Transfer and fees
		return l.balances.Transfer(*tx.From, *tx.To, tx.Amount)
	}
}

// Balance - current balance of an address
func (l *Ledger) Balance(address account.Address) microunit.MicroUnit {
	l.RLock()
	defer l.RUnlock()
	return l.balances.Balance(address)
}

// Circulating - tokens currently in circulation
func (l *Ledger) Circulating() microunit.MicroUnit {
	l.RLock()
	defer l.RUnlock()
	return l.supply.Circulating()
}

// Burned - tokens permanently removed
func (l *Ledger) Burned() microunit.MicroUnit {
	l.RLock()
	defer l.RUnlock()
	return l.supply.Burned()
}

// TransactionCount - number of transactions in the log
func (l *Ledger) TransactionCount() int {
	l.RLock()
	defer l.RUnlock()
	return len(l.txIds)
}

// GetTransaction - load one transaction by id
func (l *Ledger) GetTransaction(txId string) (*transactionrecord.Transaction, error) {
	l.RLock()
	defer l.RUnlock()
	return l.getTransaction(txId)
}

func (l *Ledger) getTransaction(txId string) (*transactionrecord.Transaction, error) {
	row := l.database.QueryRow(
		"SELECT "+selectColumns+" FROM transactions WHERE tx_id = ?", txId)

	tx, err := scanTransaction(row)
	if sql.ErrNoRows == err {
		return nil, fault.ErrTransactionNotFound
	}
	return tx, err
}

// BatchRoot - merkle root over the listed transactions' hashes
//
// the order of tx ids fixes the leaf order
func (l *Ledger) BatchRoot(txIds []string) (digest.Digest, error) {
	tree, err := l.batchTree(txIds)
	if nil != err {
		return digest.Digest{}, err
	}
	return tree.Root(), nil
}

// BatchProof - inclusion proof for one transaction of a batch
//
// returns the sibling digests, the left/right mask and the batch root
func (l *Ledger) BatchProof(txIds []string, index int) ([]digest.Digest, uint64, digest.Digest, error) {
	tree, err := l.batchTree(txIds)
	if nil != err {
		return nil, 0, digest.Digest{}, err
	}
	siblings, mask, err := tree.Proof(index)
	if nil != err {
		return nil, 0, digest.Digest{}, err
	}
	return siblings, mask, tree.Root(), nil
}

func (l *Ledger) batchTree(txIds []string) (*merkle.Tree, error) {
	l.RLock()
	defer l.RUnlock()

	leaves := make([]digest.Digest, 0, len(txIds))
	for _, txId := range txIds {
		tx, err := l.getTransaction(txId)
		if nil != err {
			return nil, err
		}
		hash, err := tx.Hash()
		if nil != err {
			return nil, err
		}
		leaves = append(leaves, hash)
	}
	return merkle.NewTree(leaves)
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(destinations ...interface{}) error
}

func scanTransaction(row scanner) (*transactionrecord.Transaction, error) {
	var (
		txType    int
		fromAddr  sql.NullString
		toAddr    sql.NullString
		amount    int64
		signature []byte
	)
	tx := &transactionrecord.Transaction{}

	err := row.Scan(&tx.TxId, &txType, &fromAddr, &toAddr, &amount,
		&tx.Metadata, &tx.Timestamp, &signature)
	if nil != err {
		if sql.ErrNoRows == err {
			return nil, err
		}
		return nil, fault.DatabaseError{Operation: "scan", Err: err}
	}

	tx.TxType = transactionrecord.TagType(txType)
	tx.Amount = microunit.MicroUnit(amount)
	if fromAddr.Valid {
		address := account.Address(fromAddr.String)
		tx.From = &address
	}
	if toAddr.Valid {
		address := account.Address(toAddr.String)
		tx.To = &address
	}
	if len(signature) > 0 {
		tx.Signature = account.Signature(signature)
	}
	return tx, nil
}

func addressColumn(address *account.Address) interface{} {
	if nil == address {
		return nil
	}
	return string(*address)
}

func signatureColumn(signature account.Signature) interface{} {
	if 0 == len(signature) {
		return nil
	}
	return []byte(signature)
}
