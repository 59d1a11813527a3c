// Package swaggerkit serves the admin API's Swagger UI and its post-processed doc.json
package swaggerkit

import (
	"net/http"

	phttp "preloadassist/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocsPath is where the UI lives; doc.json sits under it
const DocsPath = "/api/docs"

// Mount registers the UI, a redirect from the bare path and doc.json; off mounts nothing
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	docJSON := DocsPath + "/doc.json"
	r.Get(DocsPath, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, DocsPath+"/", http.StatusPermanentRedirect)
	})
	r.Get(docJSON, serveDocJSON())
	r.Handle(DocsPath+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName(InstanceName),
		httpSwagger.URL(docJSON),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DeepLinking(true),
	))
}
