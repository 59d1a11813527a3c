package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/swaggo/swag/v2"

	"preloadassist/internal/platform/config"
)

// InstanceName is the name `swag init --instanceName` registers the generated docs under
const InstanceName = "api"

// skeleton is served when no generated docs are linked into the binary
const skeleton = `{"openapi":"3.0.3","info":{"title":"Preload Assist API","version":"0.0.0"},"paths":{}}`

// SpecMutator adjusts the parsed spec before it is served
type SpecMutator func(spec map[string]any)

var (
	mutMu    sync.Mutex
	mutators []SpecMutator
)

// Register adds m to every served spec
func Register(m SpecMutator) {
	if m == nil {
		return
	}
	mutMu.Lock()
	mutators = append(mutators, m)
	mutMu.Unlock()
}

var readDoc = func() string {
	doc, err := swag.ReadDoc(InstanceName)
	if err != nil || doc == "" {
		return skeleton
	}
	return doc
}

func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(readDoc()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		normalize(spec, "/api/v1")
		if suffix := config.New().Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""); suffix != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + suffix
				}
			}
		}
		addErrorResponses(spec)

		mutMu.Lock()
		for _, m := range mutators {
			m(spec)
		}
		mutMu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// normalize serves everything as OpenAPI 3.0.3, the newest the bundled UI renders, with a server entry for base
func normalize(spec map[string]any, base string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": base}}
	}
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// defaultErrors are attached to every operation that does not document them itself
var defaultErrors = []struct {
	status  int
	text    string
	code    int
	message string
}{
	{400, "Bad Request", 8, "name must not contain whitespace or any of & = ? #"},
	{500, "Internal Server Error", 1, "internal error"},
}

// addErrorResponses documents the error envelope and adds defaultErrors to each operation
func addErrorResponses(spec map[string]any) {
	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		str := map[string]any{"type": "string"}
		num := map[string]any{"type": "integer", "format": "int32"}
		schemas["ErrorResponse"] = map[string]any{
			"type":        "object",
			"description": "Error envelope",
			"properties": map[string]any{
				"status_code": num,
				"status":      str,
				"code":        num,
				"error":       str,
				"field":       str,
				"request_id":  str,
			},
			"required": []any{"status_code", "status"},
		}
	}

	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, p := range paths {
		ops, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			for _, d := range defaultErrors {
				key := strconv.Itoa(d.status)
				if _, ok := responses[key]; ok {
					continue
				}
				responses[key] = map[string]any{
					"description": d.text,
					"content": map[string]any{"application/json": map[string]any{
						"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
						"example": map[string]any{"status_code": d.status, "status": d.text, "code": d.code, "error": d.message},
					}},
				}
			}
		}
	}
}
