package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pdfqa/internal/service"
	serviceMocks "pdfqa/internal/service/mocks"
)

func TestRoot(t *testing.T) {
	app := fiber.New()
	app.Get("/", Root())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Backend is running!", body["message"])
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

// pdfUploadRequest builds a multipart request whose file part declares the
// given content type.
func pdfUploadRequest(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadPDF(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockIngestService)
		app := fiber.New()
		app.Post("/upload", UploadPDF(mockSvc))

		mockSvc.On("Ingest", mock.Anything, mock.Anything, "report.pdf", "application/pdf").
			Return(&service.IngestResult{Filename: "report.pdf", Size: 9, TextLength: 42}, nil).Once()

		resp, _ := app.Test(pdfUploadRequest(t, "report.pdf", "application/pdf", []byte("%PDF body")))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "report.pdf", body["filename"])
		assert.Equal(t, float64(9), body["size"])
		assert.Equal(t, float64(42), body["text_length"])
		assert.Equal(t, "File uploaded and processed successfully", body["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockIngestService)
		app := fiber.New()
		app.Post("/upload", UploadPDF(mockSvc))

		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockIngestService)
		app := fiber.New()
		app.Post("/upload", UploadPDF(mockSvc))

		mockSvc.On("Ingest", mock.Anything, mock.Anything, "notes.txt", "text/plain").
			Return(nil, fmt.Errorf("%w: invalid file type", service.ErrValidation)).Once()

		resp, _ := app.Test(pdfUploadRequest(t, "notes.txt", "text/plain", []byte("hi")))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_REQUEST", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("extraction error maps to 422", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockIngestService)
		app := fiber.New()
		app.Post("/upload", UploadPDF(mockSvc))

		mockSvc.On("Ingest", mock.Anything, mock.Anything, "scan.pdf", "application/pdf").
			Return(nil, fmt.Errorf("%w: converter crashed", service.ErrExtraction)).Once()

		resp, _ := app.Test(pdfUploadRequest(t, "scan.pdf", "application/pdf", []byte("x")))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "EXTRACTION_FAILED", res.Error.Code)
		// Internal converter detail never leaks.
		assert.NotContains(t, res.Error.Message, "converter crashed")
	})

	t.Run("storage error maps to 500 with generic message", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockIngestService)
		app := fiber.New()
		app.Post("/upload", UploadPDF(mockSvc))

		mockSvc.On("Ingest", mock.Anything, mock.Anything, "a.pdf", "application/pdf").
			Return(nil, fmt.Errorf("%w: disk exploded", service.ErrStorage)).Once()

		resp, _ := app.Test(pdfUploadRequest(t, "a.pdf", "application/pdf", []byte("x")))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "disk exploded")
	})
}

func askReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAsk(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		mockSvc.On("Answer", mock.Anything, "What is this about?").
			Return(&service.AnswerResult{Answer: "A summary.", DocumentName: "report.pdf", Confidence: 0.95}, nil).Once()

		resp, _ := app.Test(askReq(`{"question":"What is this about?"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "A summary.", body["answer"])
		assert.Equal(t, "report.pdf", body["document_name"])
		assert.Equal(t, 0.95, body["confidence"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		resp, _ := app.Test(askReq(`{not json`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
	})

	t.Run("missing question", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		resp, _ := app.Test(askReq(`{}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "QUESTION_REQUIRED", res.Error.Code)
		mockSvc.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything)
	})

	t.Run("question over 1000 chars", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		long := strings.Repeat("q", 1001)
		resp, _ := app.Test(askReq(`{"question":"` + long + `"}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "QUESTION_TOO_LONG", res.Error.Code)
	})

	t.Run("no document maps to 404", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		mockSvc.On("Answer", mock.Anything, "q").
			Return(nil, fmt.Errorf("%w: please upload a PDF first", service.ErrNotFound)).Once()

		resp, _ := app.Test(askReq(`{"question":"q"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty content maps to 422", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		mockSvc.On("Answer", mock.Anything, "q").Return(nil, service.ErrEmptyContent).Once()

		resp, _ := app.Test(askReq(`{"question":"q"}`))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "EMPTY_CONTENT", res.Error.Code)
	})

	t.Run("engine failure maps to 500", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockAnswerService)
		app := fiber.New()
		app.Post("/ask", Ask(mockSvc))

		mockSvc.On("Answer", mock.Anything, "q").
			Return(nil, fmt.Errorf("%w: provider 503", service.ErrEngine)).Once()

		resp, _ := app.Test(askReq(`{"question":"q"}`))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.NotContains(t, res.Error.Message, "provider 503")
	})
}
