package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdfqa/internal/service"
)

const maxQuestionLen = 1000

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers are thin adapters: they translate pipeline outcomes into status
// codes and JSON payloads, nothing more.
func RegisterRoutes(app *fiber.App, db *sql.DB, ingestSvc service.IngestService, answerSvc service.AnswerService) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(db))
	app.Post("/upload", UploadPDF(ingestSvc))
	app.Post("/ask", Ask(answerSvc))

	// Serve the OpenAPI document and a static Swagger UI page
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})
}

// Root is the liveness probe: a fixed status payload.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Backend is running!",
			"status":  "healthy",
		})
	}
}

// HealthCheck reports DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// UploadPDF accepts a multipart PDF (field name: file) and runs the ingestion
// pipeline.
func UploadPDF(svc service.IngestService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")

		res, err := svc.Ingest(c.UserContext(), f, fh.Filename, ct)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":     "File uploaded and processed successfully",
			"filename":    res.Filename,
			"size":        res.Size,
			"text_length": res.TextLength,
		})
	}
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask answers a question about the most recently uploaded document.
func Ask(svc service.AnswerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req askRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a question field")
		}
		if req.Question == "" {
			return writeError(c, fiber.StatusBadRequest, "QUESTION_REQUIRED", "question cannot be empty")
		}
		if len(req.Question) > maxQuestionLen {
			return writeError(c, fiber.StatusBadRequest, "QUESTION_TOO_LONG", "question must be at most 1000 characters")
		}

		res, err := svc.Answer(c.UserContext(), req.Question)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"answer":        res.Answer,
			"document_name": res.DocumentName,
			"confidence":    res.Confidence,
		})
	}
}

// writeServiceError maps the service error classes onto status codes. 4xx
// responses carry a specific message; 5xx responses stay generic while the
// full detail goes to the log.
func writeServiceError(c *fiber.Ctx, err error) error {
	logError(c, err)
	switch {
	case errors.Is(err, service.ErrValidation):
		return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no document found, please upload a PDF first")
	case errors.Is(err, service.ErrExtraction):
		return writeError(c, fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED", "failed to extract text from PDF")
	case errors.Is(err, service.ErrEmptyContent):
		return writeError(c, fiber.StatusUnprocessableEntity, "EMPTY_CONTENT", "the uploaded document contains no text content")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
