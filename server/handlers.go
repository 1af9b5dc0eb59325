package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/chatdoc/core"
	"github.com/gaurav-prasanna/chatdoc/core/convert"
	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error   core.ErrorKind `json:"error"`
	Message string         `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing json response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := core.KindOf(err)
	writeJSON(w, kind.HTTPStatus(), errorBody{Error: kind, Message: core.MessageOf(err)})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": ServiceName,
		"version": ServiceVersion,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleConvert accepts multipart or urlencoded form fields html,
// filename and output_format.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	if err := s.parseForm(r); err != nil {
		writeError(w, err)
		return
	}

	req := convert.Request{
		HTML:   r.PostForm.Get("html"),
		Format: string(core.FormatDOCX),
	}
	if vs, ok := r.PostForm["output_format"]; ok && len(vs) > 0 {
		req.Format = vs[0]
	}
	if vs, ok := r.PostForm["filename"]; ok && len(vs) > 0 {
		req.Filename = &vs[0]
	}

	res, err := s.conv.Convert(r.Context(), req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": RequestID(r.Context()),
			"kind":       core.KindOf(err),
		}).Warn("convert request failed")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.MediaType)
	w.Header().Set("Content-Disposition", contentDisposition(res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logrus.WithError(err).WithField("request_id", RequestID(r.Context())).Warn("writing document")
	}
}

// parseForm reads the request body into r.PostForm.
func (s *Server) parseForm(r *http.Request) error {
	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(core.MaxHTMLSize + 1<<20)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) ||
		strings.Contains(err.Error(), "request body too large") {
		return core.Wrap(core.KindTooLarge, err,
			"Request body exceeds limit (%d bytes)", s.opts.MaxBodyBytes)
	}
	return core.Wrap(core.KindInvalidHTML, err, "Malformed form data: %v", err)
}

// contentDisposition quotes name for an attachment header, adding an
// RFC 5987 form when it is not plain ASCII.
func contentDisposition(name string) string {
	v := fmt.Sprintf("attachment; filename=%q", name)
	for _, r := range name {
		if r > 0x7e || r < 0x20 {
			return v + "; filename*=UTF-8''" + url.PathEscape(name)
		}
	}
	return v
}
