package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/orderflow/internal/domain"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type errorMapping struct {
	err    error
	status int
}

// order matters: the first matching sentinel wins
var errorMappings = []errorMapping{
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrInvalidState, http.StatusConflict},
	{domain.ErrReferentialConflict, http.StatusConflict},
}

func statusOf(err error) int {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(status, ErrorResponse{Error: userMessage(err), Code: domain.ErrorClass(err)})
}

var (
	qualifiedCall = regexp.MustCompile(`^[a-z_]\w*(\.\w+)+$`)
	localCall     = regexp.MustCompile(`^[a-z_]\w*[A-Z]\w*$`)
)

// userMessage drops the call-site segments ("orders.UpdateStatus: withTx: ...")
// that wrapping adds to an error chain and keeps the sentinel and its details.
func userMessage(err error) string {
	segments := strings.Split(err.Error(), ": ")

	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if qualifiedCall.MatchString(seg) {
			continue
		}
		if len(kept) == 0 && localCall.MatchString(seg) {
			continue
		}
		kept = append(kept, seg)
	}

	if len(kept) == 0 {
		return err.Error()
	}
	return strings.Join(kept, ": ")
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "validation"})
}
