//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// apiDoc serves the generated OpenAPI document. Regenerate with
// `swag init -g cmd/visiond/main.go` after changing handler annotations.
type apiDoc struct{}

func (apiDoc) ReadDoc() string { return swaggerDoc }

func init() {
	swag.Register(swag.Name, apiDoc{})
}

// MountSwagger serves the Swagger UI at /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "visiond API",
    "description": "HTTP API for asynchronous image description.",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/describe": {"post": {"summary": "Describe an image"}},
    "/load": {"post": {"summary": "Load the model"}},
    "/config": {"post": {"summary": "Update runtime configuration"}},
    "/cancel": {"post": {"summary": "Cancel pending work"}},
    "/status": {"get": {"summary": "Engine status"}}
  }
}`
