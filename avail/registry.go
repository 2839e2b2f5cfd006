// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avail

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gitcoin-inc/gitcoind/counter"
	"github.com/gitcoin-inc/gitcoind/fault"
)

// extra lifetime beyond the challenge timeout before an unanswered
// challenge is dropped from the registry
const expiryGraceSeconds = 5

// how often expired entries are swept
const cleanupInterval = time.Minute

// Registry - outstanding challenges awaiting a proof
//
// entries expire on their own shortly after the challenge timeout,
// so an unanswered challenge cannot be replayed later
type Registry struct {
	challenges *gocache.Cache

	issued counter.Counter
	passed counter.Counter
	failed counter.Counter
}

// NewRegistry - an empty registry
func NewRegistry() *Registry {
	return &Registry{
		challenges: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Add - track a freshly issued challenge
func (registry *Registry) Add(challenge *Challenge) {
	lifetime := time.Duration(challenge.Timeout+expiryGraceSeconds) * time.Second
	registry.challenges.Set(challenge.ChallengeId, challenge, lifetime)
	registry.issued.Increment()
}

// Take - remove and return an outstanding challenge
//
// a proof can only be validated once per challenge
func (registry *Registry) Take(challengeId string) (*Challenge, error) {
	item, ok := registry.challenges.Get(challengeId)
	if !ok {
		return nil, fault.ErrChallengeNotFound
	}
	registry.challenges.Delete(challengeId)
	return item.(*Challenge), nil
}

// RecordOutcome - count a validation result
func (registry *Registry) RecordOutcome(passedValidation bool) {
	if passedValidation {
		registry.passed.Increment()
	} else {
		registry.failed.Increment()
	}
}

// Issued - challenges added so far
func (registry *Registry) Issued() uint64 {
	return registry.issued.Uint64()
}

// Passed - proofs that validated
func (registry *Registry) Passed() uint64 {
	return registry.passed.Uint64()
}

// Failed - proofs that were rejected
func (registry *Registry) Failed() uint64 {
	return registry.failed.Uint64()
}
