package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zeebo/xxh3"

	"github.com/p7r0x7/md5trace"
	"github.com/p7r0x7/md5trace/internal/log"
	"github.com/p7r0x7/md5trace/render"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Request carries the message to hash: either text, or raw bytes as hex when the message is not
// UTF-8.
type Request struct {
	Text *string           `json:"text,omitempty"`
	Hex  md5trace.HexBytes `json:"hex,omitempty"`
}

// DigestResponse is returned by POST /api/v1/digest.
type DigestResponse struct {
	Digest md5trace.Digest `json:"digest"`
	Bytes  int             `json:"bytes"`
	Blocks int             `json:"blocks"`
}

// StepResponse is returned by POST /api/v1/trace/blocks/{block}/steps/{step}.
type StepResponse struct {
	Block   int            `json:"block"`
	Initial md5trace.State `json:"initial"`
	Step    md5trace.Step  `json:"step"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

/* errTooLarge is reported as 413 regardless of where the limit was hit. */
var errTooLarge = errors.New("input too large")

/* decode reads the request body and returns the message it names. */
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*Request, []byte, bool) {
	body := r.Body
	if s.maxInput > 0 {
		/* Hex doubles the size and JSON adds quoting and escapes. */
		body = http.MaxBytesReader(w, r.Body, int64(6*s.maxInput+1024))
	}
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.fail(w, errTooLarge)
			return nil, nil, false
		}
		writeInvalidRequest(w, "Invalid JSON: "+err.Error())
		return nil, nil, false
	}
	var msg []byte
	switch {
	case req.Text != nil && req.Hex != nil:
		writeInvalidRequest(w, "Give either text or hex, not both")
		return nil, nil, false
	case req.Text != nil:
		msg = []byte(*req.Text)
	case req.Hex != nil:
		msg = req.Hex
	default:
		writeInvalidRequest(w, "Missing text or hex")
		return nil, nil, false
	}
	if s.maxInput > 0 && len(msg) > s.maxInput {
		s.fail(w, errTooLarge)
		return nil, nil, false
	}
	return &req, msg, true
}

/* compute hashes the request under the request's context, which is consulted between blocks. */
func (s *Server) compute(ctx context.Context, req *Request, msg []byte, traced bool) (md5trace.Digest, *md5trace.FullTrace, error) {
	opts := md5trace.Options{Trace: traced}
	if log.IsVerbose() {
		opts.OnBlockDone = func(block, total int) { log.Debugf("Compressed block %d/%d", block+1, total) }
	}
	if req.Text != nil {
		return md5trace.Compute(ctx, *req.Text, opts)
	}
	padded := md5trace.Pad(msg)
	st, tr, err := md5trace.ProcessAll(ctx, padded, md5trace.Initial, opts)
	if err != nil {
		return md5trace.Digest{}, nil, err
	}
	if tr != nil {
		tr.Message = padded[:len(msg):len(msg)]
	}
	return md5trace.Finalize(st), tr, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var encErr *md5trace.EncodingError
	switch {
	case errors.Is(err, errTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
			fmt.Sprintf("Input exceeds %d bytes", s.maxInput))
	case errors.As(err, &encErr):
		writeInvalidRequest(w, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusServiceUnavailable, ErrCodeCanceled, "Request canceled")
	default:
		log.Errorf("Computation failed: %v", err)
		writeInternalError(w, err.Error())
	}
}

/* etag identifies a trace by its input; the same input always yields the same trace. */
func etag(msg []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(msg))
}

// POST /api/v1/digest
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	req, msg, ok := s.decode(w, r)
	if !ok {
		return
	}
	d, _, err := s.compute(r.Context(), req, msg, false)
	if err != nil {
		s.fail(w, err)
		return
	}
	p := md5trace.Layout(len(msg))
	writeJSON(w, http.StatusOK, DigestResponse{Digest: d, Bytes: len(msg), Blocks: p.Total / md5trace.BlockSize})
}

// POST /api/v1/trace
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	req, msg, ok := s.decode(w, r)
	if !ok {
		return
	}
	_, tr, err := s.compute(r.Context(), req, msg, true)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("ETag", etag(msg))
	writeJSON(w, http.StatusOK, tr)
}

// POST /api/v1/trace/blocks/{block}/steps/{step}
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	block, err := strconv.Atoi(chi.URLParam(r, "block"))
	if err != nil {
		writeInvalidRequest(w, "Block must be an integer")
		return
	}
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		writeInvalidRequest(w, "Step must be an integer")
		return
	}
	req, msg, ok := s.decode(w, r)
	if !ok {
		return
	}
	_, tr, err := s.compute(r.Context(), req, msg, true)
	if err != nil {
		s.fail(w, err)
		return
	}
	if block < 0 || block >= len(tr.Blocks) {
		writeNotFound(w, fmt.Sprintf("Block %d", block))
		return
	}
	if step < 0 || step >= md5trace.StepsPerBlock {
		writeNotFound(w, fmt.Sprintf("Step %d", step))
		return
	}
	b := &tr.Blocks[block]
	w.Header().Set("ETag", etag(msg))
	writeJSON(w, http.StatusOK, StepResponse{Block: block, Initial: b.Initial, Step: b.Steps[step]})
}

// POST /api/v1/render?style=tree|table|text
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	style := s.style
	if name := r.URL.Query().Get("style"); name != "" {
		var err error
		if style, err = render.ParseStyle(name); err != nil {
			writeInvalidRequest(w, err.Error())
			return
		}
	}
	req, msg, ok := s.decode(w, r)
	if !ok {
		return
	}
	_, tr, err := s.compute(r.Context(), req, msg, true)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := s.renderers[style].String(render.Tree(tr))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("ETag", etag(msg))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	/* A known vector catches a broken build before it serves wrong digests. */
	d, err := md5trace.ComputeDigest("abc")
	if err != nil || d.String() != "900150983cd24fb0d6963f7d28e17f72" {
		writeJSON(w, http.StatusInternalServerError, HealthResponse{Message: "self-test failed"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Healthy: true, Message: "ok"})
}
