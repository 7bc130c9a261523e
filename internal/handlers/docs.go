// docs.go serves the API reference: the hand-written OpenAPI document and
// a Swagger UI page that renders it.
//
// The YAML lives next to this file and is embedded, so the binary needs
// nothing on disk. Client generators that only read JSON get the same
// document converted once on first request.
package handlers

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIDoc []byte

// openAPIJSON converts the embedded YAML to JSON.
// Go Pattern: sync.OnceValues memoizes a function with its error, so the
// conversion runs at most once however many requests race for it.
var openAPIJSON = sync.OnceValues(func() ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPIDoc, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
})

// ServeOpenAPISpec returns the OpenAPI document as YAML.
// GET /api/docs/openapi.yaml
func (h *Handler) ServeOpenAPISpec(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openAPIDoc)
}

// ServeOpenAPIJSON returns the OpenAPI document as JSON.
// GET /api/docs/openapi.json
func (h *Handler) ServeOpenAPIJSON(c *gin.Context) {
	data, err := openAPIJSON()
	if err != nil {
		h.respondError(c, err, "render API document")
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// ServeSwaggerUI returns a page that loads Swagger UI from a CDN.
// GET /api/docs
func (h *Handler) ServeSwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>PaperHub API Reference</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>
    body { margin: 0; }
    .swagger-ui .topbar { display: none; }
  </style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/api/docs/openapi.json',
      dom_id: '#swagger-ui',
      deepLinking: true,
      persistAuthorization: true,
      docExpansion: 'list',
    });
  </script>
</body>
</html>`
