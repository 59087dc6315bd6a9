package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the document service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>pdfsplit-documents Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "pdfsplit-documents", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Document": { "type": "object", "required": ["documentId", "contentType"], "properties": {
        "documentId": { "type": "string", "example": "las:document:abc" },
        "contentType": { "type": "string", "example": "application/pdf" },
        "content": { "type": "string", "format": "byte" }
      } }
    }
  },
  "paths": {
    "/api/documents": {
      "get": { "summary": "List document metadata", "responses": { "200": { "description": "documents" } } },
      "post": { "summary": "Create a document", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Document" } } } }, "responses": { "201": { "description": "created" }, "400": { "description": "invalid" }, "409": { "description": "exists" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Get a document", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Update content type and/or content", "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a document", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/documents/{id}/content": {
      "get": { "summary": "Raw payload with its content type", "responses": { "200": { "description": "payload" }, "404": { "description": "missing or no content" } } }
    },
    "/api/documents/{id}/content-url": {
      "get": { "summary": "Presigned download link for an offloaded payload", "parameters": [{ "name": "ttl", "in": "query", "schema": { "type": "string", "example": "15m" } }], "responses": { "200": { "description": "url" }, "400": { "description": "invalid ttl" }, "404": { "description": "missing or not offloaded" } } }
    },
    "/api/fixtures": { "get": { "summary": "Fixture table", "responses": { "200": { "description": "fixtures" } } } },
    "/api/fixtures/{id}": { "get": { "summary": "Fixture lookup", "responses": { "200": { "description": "fixture" }, "404": { "description": "not found" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
