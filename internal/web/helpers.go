// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/toeirei/gitident/internal/errs"
	"github.com/toeirei/gitident/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debugf("web: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrIdentityExists), errors.Is(err, errs.ErrDuplicate),
		errors.Is(err, errs.ErrConfigNotSynchronized):
		return http.StatusConflict
	case errors.Is(err, errs.ErrSSHConnectionFailed):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrInvalidInput), errors.Is(err, errs.ErrInvalidRepository),
		errors.Is(err, errs.ErrInvalidRemoteURL), errors.Is(err, errs.ErrInvalidRepoPath),
		errors.Is(err, errs.ErrIncompleteIdentity), errors.Is(err, errs.ErrRemoteResolutionFailed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Errorf("web: %v", err)
	}
	writeError(w, status, err.Error())
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// paging reads ?offset= and ?limit=. Invalid values count as zero.
func paging(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}
