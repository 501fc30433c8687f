package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/loog-project/instrux/internal/document"
	"github.com/loog-project/instrux/internal/filter"
	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/internal/store"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listInstructions(c *gin.Context) {
	list, err := s.svc.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if list == nil {
		list = []*store.Instruction{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createInstruction(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	inst, rev, err := s.svc.Create(c.Request.Context(), raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, SaveResponse{Instruction: inst, Revision: summarize(rev)})
}

func (s *Server) getInstruction(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	inst, err := s.svc.Get(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	revs, err := s.svc.Revisions(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, InstructionDetail{Instruction: inst, Revisions: summarizeAll(revs)})
}

func (s *Server) updateInstruction(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	inst, rev, err := s.svc.Update(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SaveResponse{Instruction: inst, Revision: summarize(rev)})
}

func (s *Server) deleteInstruction(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listRevisions(c *gin.Context) {
	revs, err := s.svc.Revisions(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summarizeAll(revs))
}

func (s *Server) getRevision(c *gin.Context) {
	id, err := store.ParseRevisionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Revision not found", Code: CodeRevisionNotFound})
		return
	}
	rev, err := s.svc.Revision(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// diffRevisions compares two stored revisions. The response diff is a JSON
// object keyed by path, {} when the contents are identical.
func (s *Server) diffRevisions(c *gin.Context) {
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: CodeInvalidRequest})
		return
	}
	oldRaw := strings.TrimSpace(req.OldRevisionID)
	newRaw := strings.TrimSpace(req.NewRevisionID)
	if oldRaw == "" || newRaw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Both oldRevisionId and newRevisionId are required",
			Code:  CodeMissingParameters,
		})
		return
	}

	prog, err := filter.Compile(req.Filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidFilter})
		return
	}

	// an ID that does not parse cannot name a stored revision
	oldID, err := store.ParseRevisionID(oldRaw)
	if err != nil {
		s.fail(c, service.ErrRevisionNotFound)
		return
	}
	newID, err := store.ParseRevisionID(newRaw)
	if err != nil {
		s.fail(c, service.ErrRevisionNotFound)
		return
	}

	cmp, err := s.svc.Compare(c.Request.Context(), oldID, newID)
	if err != nil {
		s.fail(c, err)
		return
	}
	filtered, err := prog.Apply(cmp.Diff)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidFilter})
		return
	}
	c.JSON(http.StatusOK, cmp.WithDiff(filtered))
}

// readBody reads the whole request body, answering 400 itself on failure.
func readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: CodeInvalidRequest})
		return nil, false
	}
	return raw, true
}

// fail maps a service error to its HTTP status and error code.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		validationErr *document.ValidationError
		contentErr    *service.InvalidContentError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Document validation failed",
			Code:    CodeValidationFailed,
			Details: validationErr.Fields,
		})
	case errors.Is(err, document.ErrMalformed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
	case errors.Is(err, service.ErrMissingRevisionID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeMissingParameters})
	case errors.As(err, &contentErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: contentErr.Error(),
			Code:  CodeInvalidContent,
			Side:  string(contentErr.Side),
		})
	case errors.Is(err, service.ErrRevisionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Revision not found", Code: CodeRevisionNotFound})
	case errors.Is(err, service.ErrInstructionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Instruction not found", Code: CodeInstructionNotFound})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeInternal})
	}
}
