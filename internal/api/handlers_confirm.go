// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/auditorium/internal/confirm"
	"github.com/tomtom215/auditorium/internal/logging"
)

// archiveTimeout bounds the archive action when a confirmation fires; the
// request context that created the intent is long gone by then.
const archiveTimeout = 30 * time.Second

// ArchiveRequest opens a two-phase confirmation for archiving the view's
// selected events. Nothing is archived until the token is confirmed.
func (h *Handler) ArchiveRequest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.archiver == nil {
		respondError(w, http.StatusServiceUnavailable, "ARCHIVE_DISABLED", "archiving is not configured", nil)
		return
	}

	var body struct {
		ViewID string `json:"viewId"`
	}
	if err := decodeBody(r, &body); err != nil || body.ViewID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "viewId is required", err)
		return
	}

	state, ok := h.views.get(body.ViewID)
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}

	ids := state.Selection.IDs()
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "EMPTY_SELECTION", "select events before archiving", nil)
		return
	}

	pending := h.confirmations.Request(
		"archive",
		fmt.Sprintf("archive %d selected audit events", len(ids)),
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			defer cancel()

			archived, err := h.archiver.Archive(ctx, ids)
			if err != nil {
				return err
			}
			logging.Info().Int("archived", archived).Msg("audit events archived")
			return nil
		},
	)
	respondData(w, http.StatusAccepted, pending, started)
}

// ConfirmationList returns the live pending confirmations.
func (h *Handler) ConfirmationList(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.confirmations.Pending(), time.Now())
}

// ConfirmationConfirm redeems a token and runs its action.
func (h *Handler) ConfirmationConfirm(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	token := chi.URLParam(r, "token")

	err := h.confirmations.Confirm(token)
	switch {
	case err == nil:
		respondData(w, http.StatusOK, map[string]string{"confirmed": token}, started)
	case errors.Is(err, confirm.ErrUnknownToken):
		respondError(w, http.StatusNotFound, "UNKNOWN_TOKEN", "token was never issued or already consumed", nil)
	case errors.Is(err, confirm.ErrExpired):
		respondError(w, http.StatusGone, "TOKEN_EXPIRED", "confirmation window expired", nil)
	default:
		respondError(w, http.StatusInternalServerError, "ACTION_FAILED", "confirmed action failed", err)
	}
}

// ConfirmationCancel discards a pending token.
func (h *Handler) ConfirmationCancel(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	token := chi.URLParam(r, "token")

	if err := h.confirmations.Cancel(token); err != nil {
		respondError(w, http.StatusNotFound, "UNKNOWN_TOKEN", "token was never issued or already consumed", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"cancelled": token}, started)
}
