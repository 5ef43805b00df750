package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/export"
	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/llm"
	"github.com/abhisek/docquiz/internal/pipeline"
	"github.com/abhisek/docquiz/internal/questiongen"
)

type questionsResponse struct {
	RunID     string                 `json:"run_id"`
	Source    string                 `json:"source"`
	Questions []questiongen.Question `json:"questions"`
	Failures  map[string]string      `json:"failures"`
	Generated map[string]int         `json:"generated"`
	Messages  []string               `json:"messages"`
}

type extractResponse struct {
	Source     string `json:"source"`
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	name, text, err := s.extractFile(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{
		Source:     name,
		Text:       text,
		Characters: utf8.RuneCountInString(text),
	})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	var format export.Format
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil {
			s.writeError(w, r, &questiongen.ValidationError{Field: "format", Message: err.Error()})
			return
		}
		format = f
	}

	if s.config.Unavailable != nil {
		s.writeError(w, r, s.config.Unavailable)
		return
	}

	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	types, count, err := s.parseOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name, text, err := s.extractFile(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.RunText(r.Context(), name, text, types, count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Failed() {
		// Nothing was generated; report the first failure in request order.
		for _, qt := range res.Types {
			if ferr := res.Failures[qt]; ferr != nil {
				s.writeError(w, r, ferr)
				return
			}
		}
	}

	if format != "" {
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": export.FileName(name, format),
		}))
		if err := export.Write(w, format, name, res.Questions); err != nil {
			s.logger.Error("export failed", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, buildQuestionsResponse(res))
}

func buildQuestionsResponse(res *pipeline.Result) questionsResponse {
	out := questionsResponse{
		RunID:     res.RunID,
		Source:    res.Source,
		Questions: res.Questions,
		Failures:  make(map[string]string, len(res.Failures)),
		Generated: make(map[string]int, len(res.Generated)),
	}
	if out.Questions == nil {
		out.Questions = []questiongen.Question{}
	}
	for qt, err := range res.Failures {
		out.Failures[string(qt)] = err.Error()
	}
	for qt, n := range res.Generated {
		out.Generated[string(qt)] = n
	}
	for _, qt := range res.Types {
		switch {
		case res.Failures[qt] != nil:
			out.Messages = append(out.Messages, res.Failures[qt].Error())
		case res.Generated[qt] > 0:
			out.Messages = append(out.Messages, fmt.Sprintf("Generated %d %s question(s)", res.Generated[qt], qt.Label()))
		default:
			out.Messages = append(out.Messages, fmt.Sprintf("No %s questions were generated", qt.Label()))
		}
	}
	return out
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &questiongen.ValidationError{Field: "file", Message: "expected a multipart form with a file field"}
	}
	return nil
}

// extractFile extracts the text of the multipart "file" field.
func (s *Server) extractFile(r *http.Request) (string, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", &questiongen.ValidationError{Field: "file", Message: "missing file upload"}
	}
	defer file.Close()

	text, err := s.uploader.ExtractUpload(header.Filename, file)
	if err != nil {
		return "", "", err
	}
	return header.Filename, text, nil
}

func (s *Server) parseOptions(r *http.Request) ([]questiongen.QuestionType, int, error) {
	// "types" may repeat or carry a comma list.
	types, err := questiongen.ParseTypes(strings.Join(r.MultipartForm.Value["types"], ","))
	if err != nil {
		return nil, 0, err
	}
	if len(types) == 0 {
		return nil, 0, pipeline.ErrNoTypes
	}

	count := s.config.DefaultCount
	if raw := strings.TrimSpace(r.FormValue("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, 0, &questiongen.ValidationError{Field: "count", Message: fmt.Sprintf("Invalid question count: %q", raw)}
		}
		count = n
	}
	if err := questiongen.CheckCount(count); err != nil {
		return nil, 0, err
	}
	return types, count, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		validationErr *questiongen.ValidationError
		extractionErr *extract.ExtractionError
		rateLimitErr  *llm.ErrRateLimit
		unavailable   *llm.ErrProviderUnavailable
		tooLarge      *http.MaxBytesError
	)
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr),
		errors.As(err, &extractionErr),
		errors.Is(err, pipeline.ErrEmptyContent),
		errors.Is(err, pipeline.ErrNoTypes):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrMissingCredential), errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &rateLimitErr):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if errors.Is(err, pipeline.ErrEmptyContent) {
		msg = "No text could be extracted from the document. Please check if the file contains readable text."
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err), zap.Int("status", code), zap.String("path", r.URL.Path))
	}
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
