package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/types"
)

// persistTimeout bounds store and archive writes after a successful parse.
const persistTimeout = 30 * time.Second

// handleParseResume accepts a multipart upload in the "file" field and
// returns the parsed resume.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, errTooLarge)
			return
		}
		s.errorResponse(w, errNoFile)
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if !supportedContentType(contentType) {
		s.errorResponse(w, errUnsupportedType)
		return
	}

	document, err := io.ReadAll(file)
	if err != nil {
		s.log.Error().Err(err).Str("file", header.Filename).Msg("failed to read upload")
		s.errorResponse(w, errNoFile)
		return
	}

	if err := s.sem.Acquire(r.Context(), 1); err != nil {
		s.errorResponse(w, errBusy)
		return
	}
	data, err := s.parser.Parse(r.Context(), header.Filename, document)
	s.sem.Release(1)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("file", header.Filename).
			Str("kind", string(resume.Classify(err))).
			Msg("resume parsing failed")
		s.errorResponse(w, errParseFailed)
		return
	}

	s.persist(r.Context(), data, contentType, document)
	s.jsonResponse(w, http.StatusOK, data)
}

// supportedContentType accepts PDF and image uploads.
func supportedContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "pdf") || strings.Contains(ct, "image")
}

// persist saves data and the uploaded document when a store or archive is
// configured. Failures are logged and never fail the request.
func (s *Server) persist(ctx context.Context, data *types.ResumeData, contentType string, document []byte) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	log := s.log.With().Str("id", data.ID.String()).Logger()
	if s.store != nil {
		err := s.store.SaveAnalysis(ctx, data)
		if s.metrics != nil {
			s.metrics.RecordStore(err)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to store analysis")
		}
	}
	if s.archive != nil {
		_, err := s.archive.PutDocument(ctx, data.ID, data.FileName, contentType, document)
		if err == nil {
			_, err = s.archive.PutResult(ctx, data)
		}
		if s.metrics != nil {
			s.metrics.RecordArchive(err)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to archive analysis")
		}
	}
}

func (s *Server) handleParseResumeStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Resume Parser API is running"})
}

// handleListAnalyses returns stored analysis summaries, newest first.
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, errStoreDisabled)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list analyses")
		s.errorResponse(w, errStoreFailed)
		return
	}
	if summaries == nil {
		summaries = []types.AnalysisSummary{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"analyses": summaries,
		"count":    len(summaries),
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := s.analysisID(w, r)
	if !ok {
		return
	}
	data, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to load analysis")
		s.errorResponse(w, errStoreFailed)
		return
	}
	if data == nil {
		s.errorResponse(w, errNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, data)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := s.analysisID(w, r)
	if !ok {
		return
	}
	deleted, err := s.store.DeleteAnalysis(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("failed to delete analysis")
		s.errorResponse(w, errStoreFailed)
		return
	}
	if !deleted {
		s.errorResponse(w, errNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// analysisID checks that history is enabled and parses the {id} path value,
// writing the error response when it cannot.
func (s *Server) analysisID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.errorResponse(w, errStoreDisabled)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
