package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/instrux/internal/document"
	"github.com/loog-project/instrux/internal/service"
	"github.com/loog-project/instrux/internal/store"
	"github.com/loog-project/instrux/internal/store/bbolt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	t      *testing.T
	store  store.InstructionStore
	svc    *service.DocumentService
	server *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := bbolt.New(filepath.Join(t.TempDir(), "api.bb"), nil, false)
	require.NoError(t, err)
	svc := service.New(st, service.Options{})
	t.Cleanup(func() {
		_ = svc.Close()
		_ = st.Close()
	})
	return &fixture{
		t:      t,
		store:  st,
		svc:    svc,
		server: New(svc, Options{CORSOrigins: []string{"http://ui.example"}, DisableMetrics: true}),
	}
}

func (f *fixture) do(method, path string, body []byte, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(f.t, err)
	return f.do(method, path, raw)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// edited returns the sample document modified by fn.
func edited(t *testing.T, fn func(*document.Instruction)) []byte {
	t.Helper()
	inst := document.Sample()
	fn(inst)
	raw, err := json.Marshal(inst)
	require.NoError(t, err)
	return raw
}

// seed creates the sample instruction and a second revision with a new title.
func (f *fixture) seed() (instructionID string, first, second store.RevisionID) {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/instructions", document.SampleJSON())
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[SaveResponse](f.t, rec)

	rec = f.do(http.MethodPut, "/api/instructions/"+created.Instruction.ID, edited(f.t, func(i *document.Instruction) {
		i.Header.Title = "Sample Instruction v2"
	}))
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[SaveResponse](f.t, rec)
	return created.Instruction.ID, created.Revision.ID, updated.Revision.ID
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[HealthResponse](t, rec).Status)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/health", nil, headerRequestID, "req-123")
	assert.Equal(t, "req-123", rec.Header().Get(headerRequestID))

	rec = f.do(http.MethodGet, "/api/health", nil)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodOptions, "/api/instructions", nil, "Origin", "http://ui.example")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://ui.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(http.MethodGet, "/api/health", nil, "Origin", "http://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestInstructionLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/instructions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	id, first, second := f.seed()

	rec = f.do(http.MethodGet, "/api/instructions", nil)
	list := decodeBody[[]store.Instruction](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Sample Instruction v2", list[0].Title)
	assert.Equal(t, 2, list[0].RevisionCount)

	rec = f.do(http.MethodGet, "/api/instructions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[struct {
		ID        string            `json:"id"`
		Revisions []RevisionSummary `json:"revisions"`
	}](t, rec)
	assert.Equal(t, id, detail.ID)
	require.Len(t, detail.Revisions, 2)
	assert.Equal(t, second, detail.Revisions[0].ID)
	assert.Equal(t, first, detail.Revisions[1].ID)

	rec = f.do(http.MethodGet, "/api/instructions/"+id+"/revisions", nil)
	assert.Len(t, decodeBody[[]RevisionSummary](t, rec), 2)

	rec = f.do(http.MethodGet, "/api/revisions/"+first.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rev := decodeBody[store.Revision](t, rec)
	assert.Equal(t, id, rev.InstructionID)
	assert.Contains(t, rev.Content, `"Sample Instruction"`)

	rec = f.do(http.MethodDelete, "/api/instructions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/api/instructions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeInstructionNotFound, decodeBody[ErrorResponse](t, rec).Code)

	rec = f.do(http.MethodGet, "/api/revisions/"+first.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/instructions", []byte(`{"header":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidRequest, decodeBody[ErrorResponse](t, rec).Code)

	rec = f.do(http.MethodPost, "/api/instructions", edited(t, func(i *document.Instruction) {
		i.Header.Title = ""
		i.Steps[0].StepNumber = 0
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, CodeValidationFailed, body.Code)
	fields := map[string]string{}
	for _, d := range body.Details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "header.title")
	assert.Contains(t, fields, "steps[0].stepNumber")

	rec = f.do(http.MethodPut, "/api/instructions/missing", document.SampleJSON())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeInstructionNotFound, decodeBody[ErrorResponse](t, rec).Code)
}

func TestDiffRevisions(t *testing.T) {
	f := newFixture(t)
	_, first, second := f.seed()

	rec := f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
		OldRevisionID: first.String(),
		NewRevisionID: second.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		OldRevision service.RevisionMeta       `json:"oldRevision"`
		NewRevision service.RevisionMeta       `json:"newRevision"`
		Diff        map[string]json.RawMessage `json:"diff"`
		Stats       map[string]int             `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, first, body.OldRevision.ID)
	assert.Equal(t, second, body.NewRevision.ID)
	require.Contains(t, body.Diff, "header.title")
	assert.JSONEq(t,
		`{"op":"modified","old":"Sample Instruction","new":"Sample Instruction v2"}`,
		string(body.Diff["header.title"]))
	assert.Equal(t, len(body.Diff), body.Stats["added"]+body.Stats["removed"]+body.Stats["modified"])
}

func TestDiffRevisionsIdentical(t *testing.T) {
	f := newFixture(t)
	_, first, _ := f.seed()

	rec := f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
		OldRevisionID: first.String(),
		NewRevisionID: first.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Diff json.RawMessage `json:"diff"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `{}`, string(body.Diff))
}

func TestDiffRevisionsFilter(t *testing.T) {
	f := newFixture(t)
	_, first, second := f.seed()

	rec := f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
		OldRevisionID: first.String(),
		NewRevisionID: second.String(),
		Filter:        `Under("steps")`,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Diff map[string]json.RawMessage `json:"diff"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Diff)

	rec = f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
		OldRevisionID: first.String(),
		NewRevisionID: second.String(),
		Filter:        `Path ==`,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidFilter, decodeBody[ErrorResponse](t, rec).Code)
}

func TestDiffRevisionsErrors(t *testing.T) {
	f := newFixture(t)
	_, first, _ := f.seed()

	rec := f.do(http.MethodPost, "/api/revisions/diff", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidRequest, decodeBody[ErrorResponse](t, rec).Code)

	rec = f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{OldRevisionID: first.String()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeMissingParameters, decodeBody[ErrorResponse](t, rec).Code)

	for _, missing := range []string{"00000000000003e7", "not-an-id", "0"} {
		rec = f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
			OldRevisionID: first.String(),
			NewRevisionID: missing,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code, missing)
		assert.Equal(t, CodeRevisionNotFound, decodeBody[ErrorResponse](t, rec).Code, missing)
	}
}

func TestDiffRevisionsInvalidContent(t *testing.T) {
	f := newFixture(t)
	_, first, _ := f.seed()

	// bypass the service, which only stores validated documents
	inst := &store.Instruction{ID: "broken"}
	broken := &store.Revision{Revision: "A", Content: `{"header":`}
	require.NoError(t, f.store.AddRevision(context.Background(), inst, broken))

	rec := f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
		OldRevisionID: broken.ID.String(),
		NewRevisionID: first.String(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, CodeInvalidContent, body.Code)
	assert.Equal(t, "old", body.Side)

	rec = f.doJSON(http.MethodPost, "/api/revisions/diff", DiffRequest{
		OldRevisionID: first.String(),
		NewRevisionID: broken.ID.String(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "new", decodeBody[ErrorResponse](t, rec).Side)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
