package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"docqa/internal/app"
	"docqa/internal/extract"
	"docqa/internal/httputil"
	"docqa/internal/llm"
	"docqa/internal/session"
	"docqa/internal/web"
)

const sessionCookie = "docqa_session"

type sessionKey struct{}

type credentialRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=ask_anything challenge_me"`
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type answerRequest struct {
	Index  *int   `json:"index" validate:"required,min=0"`
	Answer string `json:"answer" validate:"required,max=4000"`
}

// sessionMiddleware resolves the caller's session from its cookie, creating
// one on first contact.
func sessionMiddleware(deps app.Deps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *session.Session
			if c, err := r.Cookie(sessionCookie); err == nil {
				s, _ = deps.Sessions.Get(c.Value)
			}
			if s == nil {
				created, err := deps.Controller.NewSession(r.Context())
				if err != nil {
					httputil.Fail(deps.Log, w, "failed to start session", err, http.StatusInternalServerError)
					return
				}
				s = created
				deps.Sessions.Save(s)
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
				})
				deps.Log.Info("session started", "session_id", s.ID, "state", s.State())
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

func pageHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r.Context())
		err := web.Render(w, web.PageData{
			NeedsCredential: s.State() == session.StateNoCredential,
			MaxUploadSize:   deps.Config.MaxUploadSize,
		})
		if err != nil {
			deps.Log.Error("failed to render page", "err", err)
		}
	}
}

func sessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, sessionFrom(r.Context()).Snapshot())
	}
}

func credentialHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if !decode(deps, w, r, &req) {
			return
		}
		s := sessionFrom(r.Context())
		if err := deps.Controller.SetCredential(r.Context(), s, req.APIKey); err != nil {
			fail(deps, w, "failed to set API key", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r.Context())
		if s.State() == session.StateNoCredential {
			fail(deps, w, "upload rejected", session.ErrCredentialMissing)
			return
		}

		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1<<20)

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusRequestEntityTooLarge)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if err := deps.Controller.Upload(r.Context(), s, header.Filename, contentType, content); err != nil {
			fail(deps, w, "upload failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func summaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r.Context())
		if err := deps.Controller.RetrySummary(r.Context(), s); err != nil {
			fail(deps, w, "summary failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
	}
}

func modeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if !decode(deps, w, r, &req) {
			return
		}
		s := sessionFrom(r.Context())
		if err := deps.Controller.SelectMode(r.Context(), s, session.Mode(req.Mode)); err != nil {
			fail(deps, w, "mode change failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
	}
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if !decode(deps, w, r, &req) {
			return
		}
		s := sessionFrom(r.Context())
		if _, err := deps.Controller.Ask(r.Context(), s, req.Question); err != nil {
			fail(deps, w, "question failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
	}
}

func answerHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if !decode(deps, w, r, &req) {
			return
		}
		s := sessionFrom(r.Context())
		if _, err := deps.Controller.SubmitAnswer(r.Context(), s, *req.Index, req.Answer); err != nil {
			fail(deps, w, "evaluation failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
	}
}

// decode reads and validates a JSON body, writing the error response itself.
func decode(deps app.Deps, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
		return false
	}
	if err := httputil.Validator.Struct(dst); err != nil {
		httputil.ValidationError(deps.Log, w, err)
		return false
	}
	return true
}

// fail reports err at the action that caused it, mapped to an HTTP status.
func fail(deps app.Deps, w http.ResponseWriter, message string, err error) {
	httputil.Fail(deps.Log, w, message, err, errorStatus(err))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrCredentialMissing), errors.Is(err, llm.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrNoDocument), errors.Is(err, session.ErrModeMismatch):
		return http.StatusConflict
	case errors.Is(err, session.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidMode), errors.Is(err, session.ErrEmptyInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
