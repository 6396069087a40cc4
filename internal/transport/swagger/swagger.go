package swagger

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// DocumentPath is where the API description is served.
const DocumentPath = "/openapi.yml"

// Document is a validated OpenAPI description, served verbatim.
type Document struct {
	raw  []byte
	spec *openapi3.T
}

// Load reads and validates the OpenAPI file at path.
func Load(ctx context.Context, path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}
	return Parse(ctx, raw)
}

func Parse(ctx context.Context, raw []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return &Document{raw: raw, spec: spec}, nil
}

func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// Operations lists every documented operation as "METHOD /path", sorted.
func (d *Document) Operations() []string {
	var ops []string
	for path, item := range d.spec.Paths.Map() {
		for method := range item.Operations() {
			ops = append(ops, method+" "+path)
		}
	}
	sort.Strings(ops)
	return ops
}

func (d *Document) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(d.raw)
}

// Handler serves Swagger UI pointed at DocumentPath.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(DocumentPath),
	)
}
