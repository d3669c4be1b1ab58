package handlers

import (
	_ "embed"

	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
)

//go:embed openapi.yaml
var openAPISpec []byte

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Portfolio Contact API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>window.ui = SwaggerUIBundle({url: "/api-docs/openapi.yaml", dom_id: "#swagger-ui"});</script>
</body>
</html>`

// DocsCSP relaxes the content policy for the docs page, which pulls
// swagger-ui from a CDN.
const DocsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' https://unpkg.com; img-src 'self' data:"

// RegisterDocsRoutes mounts the API reference. Callers decide whether docs
// are exposed at all.
func RegisterDocsRoutes(r *xhttp.Router) {
	r.GET("/api-docs", DocsPage)
	r.GET("/api-docs/openapi.yaml", OpenAPISpec)
}

func DocsPage(ctx *xhttp.RequestCtx) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.Response.Header.Set("Content-Security-Policy", DocsCSP)
	ctx.SetStatusCode(xhttp.StatusOK)
	ctx.SetBodyString(docsPage)
}

func OpenAPISpec(ctx *xhttp.RequestCtx) {
	ctx.SetContentType("application/yaml")
	ctx.SetStatusCode(xhttp.StatusOK)
	ctx.SetBody(openAPISpec)
}

// DocsPageHTML returns the swagger-ui page pointing at the embedded document.
func DocsPageHTML() []byte {
	return []byte(docsPage)
}

// OpenAPIDocument returns the embedded OpenAPI document.
func OpenAPIDocument() []byte {
	return openAPISpec
}
