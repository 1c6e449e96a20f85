package http

import (
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
)

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><title>Directory listing for /{{.Path}}</title></head>
<body>
<h1>Directory listing for /{{.Path}}</h1>
<hr>
<ul>
{{- if .Parent}}
<li><a href="{{.Parent}}">..</a></li>
{{- end}}
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Name}}</a>{{if not .IsDir}} ({{.Size}}){{end}}</li>
{{- end}}
</ul>
<hr>
</body>
</html>
`))

type listingEntry struct {
	Name  string
	Href  string
	Size  string
	IsDir bool
}

type listingPage struct {
	Path    string
	Parent  string
	Entries []listingEntry
}

func (h *Handler) renderListing(w http.ResponseWriter, r *http.Request, path string) {
	entries, err := h.service.Browse(r.Context(), path)
	if err != nil {
		HandleError(w, err)
		return
	}

	page := listingPage{Path: path}
	if path != "" {
		page.Path = path + "/"
		page.Parent = "../"
	}

	for _, e := range entries {
		name := e.Name
		href := name
		if e.IsDir {
			name += "/"
			href += "/"
		}
		page.Entries = append(page.Entries, listingEntry{
			Name:  name,
			Href:  href,
			Size:  humanize.IBytes(uint64(e.Size)),
			IsDir: e.IsDir,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := listingTemplate.Execute(w, page); err != nil {
		slog.Error("failed to render directory listing", "path", path, "error", err)
	}
}

const defaultNotFoundHTML = `<html>
<head><title>404 Not Found</title></head>
<body>
<center><h1>404 Not Found</h1></center>
<hr><center>res25-joy</center>
</body>
</html>`

func writeNotFoundPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, defaultNotFoundHTML)
}
