// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package confirm implements two-phase approval for destructive operations.
// Phase one registers the intent and hands back an opaque token; phase two
// redeems the token to execute, or cancels it. Unredeemed tokens expire, so
// a stale confirmation dialog can never fire an old action.
package confirm

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a pending confirmation stays redeemable.
const DefaultTTL = 2 * time.Minute

var (
	// ErrUnknownToken reports a token that was never issued, was already
	// redeemed, or was cancelled.
	ErrUnknownToken = errors.New("confirm: unknown or consumed token")

	// ErrExpired reports a token past its deadline.
	ErrExpired = errors.New("confirm: confirmation window expired")
)

// Pending describes an intent awaiting its second phase.
type Pending struct {
	Token     string    `json:"token"`
	Action    string    `json:"action"`
	Summary   string    `json:"summary"`
	ExpiresAt time.Time `json:"expiresAt"`

	execute func() error
}

// Broker issues and redeems confirmation tokens. Safe for concurrent use.
type Broker struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[string]Pending
}

// NewBroker returns a broker with the given token lifetime. A zero or
// negative ttl falls back to DefaultTTL.
func NewBroker(ttl time.Duration) *Broker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Broker{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]Pending),
	}
}

// Request registers an intent. The action names the operation, summary is
// the human-readable description shown to the approver, and execute runs
// exactly once if and when the token is confirmed in time.
func (b *Broker) Request(action, summary string, execute func() error) Pending {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()

	p := Pending{
		Token:     uuid.NewString(),
		Action:    action,
		Summary:   summary,
		ExpiresAt: b.now().Add(b.ttl),
		execute:   execute,
	}
	b.pending[p.Token] = p
	return p
}

// Confirm redeems a token and runs its action. The token is consumed
// whether or not the action succeeds; a second Confirm with the same token
// returns ErrUnknownToken.
func (b *Broker) Confirm(token string) error {
	b.mu.Lock()
	p, ok := b.pending[token]
	if ok {
		delete(b.pending, token)
	}
	b.mu.Unlock()

	if !ok {
		return ErrUnknownToken
	}
	if b.now().After(p.ExpiresAt) {
		return ErrExpired
	}
	return p.execute()
}

// Cancel discards a pending token without running its action.
func (b *Broker) Cancel(token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pending[token]; !ok {
		return ErrUnknownToken
	}
	delete(b.pending, token)
	return nil
}

// Pending lists the live intents, expired ones excluded. Order is not
// specified.
func (b *Broker) Pending() []Pending {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()

	out := make([]Pending, 0, len(b.pending))
	for _, p := range b.pending {
		p.execute = nil
		out = append(out, p)
	}
	return out
}

// sweepLocked drops expired entries. Callers hold b.mu.
func (b *Broker) sweepLocked() {
	cutoff := b.now()
	for token, p := range b.pending {
		if cutoff.After(p.ExpiresAt) {
			delete(b.pending, token)
		}
	}
}
