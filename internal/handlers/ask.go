package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sdko-org/lawchat-api/internal/models"
	"github.com/sdko-org/lawchat-api/internal/resolver"
	"github.com/sirupsen/logrus"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

// HandleAsk runs one question through the pipeline: validate, resolve,
// respond, then submit the audit record. The audit write happens after
// the response is computed and never delays or fails it.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be JSON with a question field")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question cannot be empty or whitespace only")
		return
	}
	if utf8.RuneCountInString(question) > h.cfg.MaxQuestionLength {
		writeError(w, http.StatusBadRequest, "Question is too long")
		return
	}

	requestTime := time.Now().UTC()
	result, err := h.resolver.Resolve(r.Context(), question)
	if err != nil {
		if errors.Is(err, resolver.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "Question cannot be empty or whitespace only")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	answeredAt := time.Now().UTC()

	h.log.WithFields(logrus.Fields{
		"source":   result.Source,
		"duration": answeredAt.Sub(requestTime),
	}).Info("Question resolved")

	writeJSON(w, http.StatusOK, askResponse{Answer: result.Answer, Source: result.Source})

	answer := result.Answer
	h.audit.Record(models.ChatLog{
		Question:       question,
		Answer:         &answer,
		Source:         result.Source,
		Timestamp:      requestTime,
		AnsweredAt:     &answeredAt,
		ClientIP:       getClientIP(r),
		ResponseTimeMS: answeredAt.Sub(requestTime).Milliseconds(),
	})
}
