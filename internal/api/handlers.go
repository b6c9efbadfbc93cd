package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"signalbot/internal/service"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePocketOption(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	params, err := postbackParams(r)
	if err != nil {
		logger.Warn().Err(err).Msg("Malformed postback body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	logger.Info().Interface("params", params).Msg("PocketOption postback received")

	result, err := s.postback.Handle(r.Context(), params)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, service.ErrMissingClickID):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Missing required parameters",
			"missing": service.MissingParams(params),
		})
	case errors.Is(err, service.ErrInvalidSignature):
		logger.Warn().Msg("Invalid postback signature")
		writeError(w, http.StatusUnauthorized, "Invalid signature")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		logger.Error().Err(err).Msg("Postback processing failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleTopLink партнёр подключён, обработка событий пока не реализована.
func (s *Server) handleTopLink(w http.ResponseWriter, r *http.Request) {
	params, err := postbackParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	zerolog.Ctx(r.Context()).Info().Interface("params", params).Msg("TopLink postback received")

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "TopLink postback received but not implemented yet",
	})
}

func (s *Server) handleGenericPostback(w http.ResponseWriter, r *http.Request) {
	partner := chi.URLParam(r, "partner")

	params, err := postbackParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("partner", partner).Interface("params", params).Msg("Generic postback received")

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"partner": partner,
		"message": "Generic postback received",
		"data":    params,
	})
}

// postbackParams объединяет query, form и JSON тело. Поля тела перекрывают query.
func postbackParams(r *http.Request) (map[string]string, error) {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	if r.Body == nil || r.Method == http.MethodGet {
		return params, nil
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		for k, v := range body {
			params[k] = stringValue(v)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	return params, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
