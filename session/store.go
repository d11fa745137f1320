// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/go-a2a/credstore/pkg/logging"
	"github.com/go-a2a/credstore/types"
)

// Store is the in-memory authority for active sessions. It maps session
// handles and bearer tokens to user identities and live credentials,
// enforces identity binding, refreshes expired credentials, and mirrors
// every credential mutation to the repository before returning it.
//
// A Store is safe for concurrent use. Refreshes are serialized per
// identity; calls for different identities never block one another.
type Store struct {
	repo      types.CredentialRepository
	refresher types.Refresher
	revoker   types.Revoker
	now       func() time.Time

	mu         sync.RWMutex
	byHandle   map[string]*Record
	byBearer   map[string]*Record
	byIdentity map[string]map[string]*Record // identity -> handle -> record

	refreshGroup singleflight.Group
}

// Option configures a [Store].
type Option func(*Store)

// WithRevoker sets the provider-side revoker used on a best-effort
// basis during revocation.
func WithRevoker(r types.Revoker) Option {
	return func(s *Store) { s.revoker = r }
}

// WithClock overrides the store's time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a [Store] over the given repository and refresher.
func NewStore(repo types.CredentialRepository, refresher types.Refresher, opts ...Option) *Store {
	s := &Store{
		repo:       repo,
		refresher:  refresher,
		now:        time.Now,
		byHandle:   make(map[string]*Record),
		byBearer:   make(map[string]*Record),
		byIdentity: make(map[string]map[string]*Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RevocationResult reports the outcome of a revocation.
type RevocationResult struct {
	// Identity is the identity whose sessions were revoked.
	Identity string

	// ProviderRevoked reports whether the grant was also invalidated at
	// the identity provider. Local removal succeeds either way.
	ProviderRevoked bool
}

// CreateSession registers a session for a freshly authorized identity
// and returns its handle and bearer token. The credential is durably
// persisted before the session becomes visible, so a crash immediately
// after creation still leaves a usable record.
func (s *Store) CreateSession(ctx context.Context, identity string, cred *types.Credential) (handle, bearerToken string, err error) {
	if identity == "" {
		return "", "", errors.New("create session: identity must not be empty")
	}
	if cred == nil {
		return "", "", errors.New("create session: credential must not be nil")
	}

	if err := s.repo.Save(ctx, identity, cred); err != nil {
		return "", "", fmt.Errorf("persist credential for %s: %w", identity, err)
	}

	now := s.now()
	rec := &Record{
		Handle:      uuid.NewString(),
		BearerToken: newBearerToken(),
		Identity:    identity,
		Credential:  cred.Clone(),
		CreatedAt:   now,
		LastUsedAt:  now,
		state:       StateActive,
	}

	s.mu.Lock()
	s.insertLocked(rec)
	s.mu.Unlock()

	logging.FromContext(ctx).InfoContext(ctx, "session created",
		slog.String("identity", identity),
		slog.String("session_handle", rec.Handle),
	)

	return rec.Handle, rec.BearerToken, nil
}

// Resolve authenticates a tool call and returns a usable credential for
// it. At least one of handle and bearerToken must be supplied.
//
// A claimed identity differing from the session's bound identity is a
// security violation: it is logged at error severity and the call fails
// with [types.ErrSecurityViolation]; the session stays bound to its
// original identity.
//
// When no in-memory record exists (process restart) and a claimed
// identity is supplied, the session is rehydrated from the repository
// and bound to that identity before proceeding.
//
// An expired, refreshable credential is refreshed and persisted before
// it is returned; concurrent resolves for the same identity share one
// refresh exchange. An expired credential without a refresh token fails
// with [types.ErrReauthenticationRequired].
func (s *Store) Resolve(ctx context.Context, handle, bearerToken, claimedIdentity string) (*types.Credential, error) {
	if handle == "" && bearerToken == "" {
		return nil, fmt.Errorf("resolve: session handle or bearer token required: %w", types.ErrAccessDenied)
	}

	rec, err := s.lookup(ctx, handle, bearerToken, claimedIdentity)
	if err != nil {
		return nil, err
	}

	if claimedIdentity != "" && rec.Identity != claimedIdentity {
		logging.FromContext(ctx).ErrorContext(ctx, "session identity mismatch",
			slog.String("session_handle", rec.Handle),
			slog.String("bound_identity", rec.Identity),
			slog.String("claimed_identity", claimedIdentity),
		)
		return nil, fmt.Errorf("resolve session %s: claimed identity %q is not the bound identity: %w",
			rec.Handle, claimedIdentity, types.ErrSecurityViolation)
	}

	now := s.now()

	s.mu.RLock()
	identity := rec.Identity
	expired := rec.Credential.Expired(now)
	refreshable := rec.Credential.Refreshable()
	s.mu.RUnlock()

	switch {
	case !expired:
		s.mu.Lock()
		rec.LastUsedAt = now
		cred := rec.Credential.Clone()
		s.mu.Unlock()
		return cred, nil

	case !refreshable:
		return nil, fmt.Errorf("credential for session %s expired without a refresh token: %w",
			rec.Handle, types.ErrReauthenticationRequired)
	}

	v, err, _ := s.refreshGroup.Do(identity, func() (any, error) {
		return s.refresh(ctx, identity)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	rec.LastUsedAt = now
	s.mu.Unlock()

	return v.(*types.Credential).Clone(), nil
}

// lookup finds the record for the supplied keys, rehydrating it from the
// repository when possible.
func (s *Store) lookup(ctx context.Context, handle, bearerToken, claimedIdentity string) (*Record, error) {
	s.mu.RLock()
	rec, err := s.findLocked(handle, bearerToken)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}

	if claimedIdentity == "" {
		return nil, fmt.Errorf("resolve: no active session for the supplied token: %w",
			types.ErrReauthenticationRequired)
	}

	cred, err := s.repo.Load(ctx, claimedIdentity)
	if err != nil {
		return nil, fmt.Errorf("rehydrate session for %s: %w", claimedIdentity, err)
	}
	if cred == nil {
		return nil, fmt.Errorf("resolve: no stored credential for %s: %w",
			claimedIdentity, types.ErrReauthenticationRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent call may have rehydrated the same session already.
	if rec, err := s.findLocked(handle, bearerToken); err != nil || rec != nil {
		return rec, err
	}

	// The record binds whichever keys the caller presented; missing ones
	// are minted fresh so both indexes stay unique.
	if handle == "" {
		handle = uuid.NewString()
	}
	if bearerToken == "" {
		bearerToken = newBearerToken()
	}

	now := s.now()
	rec = &Record{
		Handle:      handle,
		BearerToken: bearerToken,
		Identity:    claimedIdentity,
		Credential:  cred.Clone(),
		CreatedAt:   now,
		LastUsedAt:  now,
		state:       StateActive,
	}
	s.insertLocked(rec)

	logging.FromContext(ctx).InfoContext(ctx, "session rehydrated from repository",
		slog.String("identity", claimedIdentity),
		slog.String("session_handle", rec.Handle),
	)

	return rec, nil
}

// findLocked resolves the supplied keys against the indexes. When both
// keys are supplied they must identify the same record.
func (s *Store) findLocked(handle, bearerToken string) (*Record, error) {
	var byHandle, byBearer *Record
	if handle != "" {
		byHandle = s.byHandle[handle]
	}
	if bearerToken != "" {
		byBearer = s.byBearer[bearerToken]
	}

	if byHandle != nil && byBearer != nil && byHandle != byBearer {
		return nil, fmt.Errorf("resolve: session handle and bearer token identify different sessions: %w",
			types.ErrAccessDenied)
	}
	if byHandle != nil {
		return byHandle, nil
	}
	return byBearer, nil
}

func (s *Store) insertLocked(rec *Record) {
	s.byHandle[rec.Handle] = rec
	s.byBearer[rec.BearerToken] = rec
	if _, ok := s.byIdentity[rec.Identity]; !ok {
		s.byIdentity[rec.Identity] = make(map[string]*Record)
	}
	s.byIdentity[rec.Identity][rec.Handle] = rec
}

// refresh performs one refresh exchange for identity and installs the
// result on every live record bound to it. The refreshed credential is
// persisted before it becomes observable to any caller. Runs inside the
// per-identity singleflight group.
func (s *Store) refresh(ctx context.Context, identity string) (*types.Credential, error) {
	// An in-flight refresh is never cancelled: the provider may have
	// already rotated the refresh token, so the exchange and the persist
	// must run to completion even when the first caller's request-level
	// deadline fires, and a cancelled caller must not fail the other
	// flight waiters. Logger and other context values are kept.
	ctx = logging.With(context.WithoutCancel(ctx), slog.String("identity", identity))

	s.mu.Lock()
	recs := s.byIdentity[identity]
	if len(recs) == 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("refresh: no active session for %s: %w",
			identity, types.ErrReauthenticationRequired)
	}

	var seed *types.Credential
	for _, rec := range recs {
		seed = rec.Credential
		break
	}

	// A flight that completed after this caller observed the expiry may
	// have refreshed the credential already.
	if !seed.Expired(s.now()) {
		cred := seed.Clone()
		s.mu.Unlock()
		return cred, nil
	}
	if !seed.Refreshable() {
		s.mu.Unlock()
		return nil, fmt.Errorf("credential for %s expired without a refresh token: %w",
			identity, types.ErrReauthenticationRequired)
	}

	for _, rec := range recs {
		rec.state = StateRefreshing
	}
	seed = seed.Clone()
	s.mu.Unlock()

	refreshed, err := s.refresher.Refresh(ctx, seed)
	if err != nil {
		s.setStateAll(ctx, identity, StateActive)
		if errors.Is(err, types.ErrInvalidGrant) {
			return nil, fmt.Errorf("refresh rejected by provider for %s: %w: %w",
				identity, types.ErrReauthenticationRequired, err)
		}
		return nil, fmt.Errorf("refresh credential for %s: %w", identity, err)
	}

	// Persist-then-return: a caller must never observe a refreshed token
	// that is not yet durable.
	if err := s.repo.Save(ctx, identity, refreshed); err != nil {
		s.setStateAll(ctx, identity, StateActive)
		return nil, fmt.Errorf("persist refreshed credential for %s: %w", identity, err)
	}

	s.mu.Lock()
	for _, rec := range s.byIdentity[identity] {
		rec.Credential = refreshed.Clone()
		rec.state = StateActive
	}
	s.mu.Unlock()

	logging.FromContext(ctx).InfoContext(ctx, "credential refreshed",
		slog.Time("expiry", refreshed.Expiry),
	)

	return refreshed, nil
}

func (s *Store) setStateAll(ctx context.Context, identity string, state State) {
	s.mu.Lock()
	for _, rec := range s.byIdentity[identity] {
		rec.state = state
	}
	s.mu.Unlock()

	logging.FromContext(ctx).DebugContext(ctx, "session state changed",
		slog.String("identity", identity),
		slog.String("state", state.String()),
	)
}

// RevokeSession revokes the identity behind a bearer token. It fails
// with [types.ErrAccessDenied] when the token does not resolve to an
// active session.
func (s *Store) RevokeSession(ctx context.Context, bearerToken string) (*RevocationResult, error) {
	s.mu.RLock()
	rec := s.byBearer[bearerToken]
	s.mu.RUnlock()

	if rec == nil {
		return nil, fmt.Errorf("revoke: bearer token does not resolve to an active session: %w",
			types.ErrAccessDenied)
	}
	return s.RevokeIdentity(ctx, rec.Identity)
}

// RevokeHandle revokes the identity bound to a session handle.
func (s *Store) RevokeHandle(ctx context.Context, handle string) (*RevocationResult, error) {
	s.mu.RLock()
	rec := s.byHandle[handle]
	s.mu.RUnlock()

	if rec == nil {
		return nil, fmt.Errorf("revoke: unknown session handle: %w", types.ErrAccessDenied)
	}
	return s.RevokeIdentity(ctx, rec.Identity)
}

// RevokeIdentity removes every session bound to identity, deletes the
// persisted credential, and makes a best-effort attempt to revoke the
// grant at the provider. Provider-side failure is logged but does not
// fail the operation; the durable record is already gone, which is the
// authoritative local security boundary.
func (s *Store) RevokeIdentity(ctx context.Context, identity string) (*RevocationResult, error) {
	var cred *types.Credential

	s.mu.Lock()
	for _, rec := range s.byIdentity[identity] {
		rec.state = StateRevoked
		delete(s.byHandle, rec.Handle)
		delete(s.byBearer, rec.BearerToken)
		if cred == nil {
			cred = rec.Credential.Clone()
		}
	}
	delete(s.byIdentity, identity)
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, identity); err != nil {
		return nil, fmt.Errorf("delete persisted credential for %s: %w", identity, err)
	}

	result := &RevocationResult{Identity: identity}
	if s.revoker != nil && cred != nil {
		if err := s.revoker.Revoke(ctx, cred); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "provider-side revocation failed",
				slog.String("identity", identity),
				slog.Any("error", err),
			)
		} else {
			result.ProviderRevoked = true
		}
	}

	logging.FromContext(ctx).InfoContext(ctx, "sessions revoked",
		slog.String("identity", identity),
		slog.Bool("provider_revoked", result.ProviderRevoked),
	)

	return result, nil
}

// SessionState returns the lifecycle state of the session bound to
// handle. The second result is false when the store holds no live
// record for it (never created, or revoked and removed).
func (s *Store) SessionState(handle string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byHandle[handle]
	if !ok {
		return 0, false
	}
	return rec.State(), true
}

// ActiveSessions returns the handles of the live sessions bound to
// identity, sorted for stable output.
func (s *Store) ActiveSessions(identity string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]string, 0, len(s.byIdentity[identity]))
	for handle := range s.byIdentity[identity] {
		handles = append(handles, handle)
	}
	slices.Sort(handles)
	return handles
}
