// Package preview serves the in-progress render over HTTP: a PNG of the
// current estimate and a status page that polls it.
package preview

import (
	"bytes"
	"html/template"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
)

// maxDimension bounds requested preview sizes.
const maxDimension = 4096

// Source is the view of a renderer that the preview needs.
type Source interface {
	Size() (cols, rows int)
	SamplesPerPixel() int64
	TotalSamples() int64
	CopyImage(width, height int) *image.RGBA
}

type Handler struct {
	src   Source
	start time.Time
	name  string
}

func New(src Source, sceneName string) *Handler {
	return &Handler{src: src, start: time.Now(), name: sceneName}
}

// Register installs the preview endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/image.png", h.serveImage)
	mux.HandleFunc("/statusz", h.serveStatus)
}

func dimension(req *http.Request, key string, def int) (int, bool) {
	s := req.URL.Query().Get(key)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > maxDimension {
		return 0, false
	}
	return v, true
}

func (h *Handler) serveImage(w http.ResponseWriter, req *http.Request) {
	tracer := otel.Tracer("row-major.net/harpoon/preview")
	_, span := tracer.Start(req.Context(), "Handler.serveImage")
	defer span.End()

	cols, rows := h.src.Size()
	width, ok := dimension(req, "w", cols)
	if !ok {
		http.Error(w, "bad width", http.StatusBadRequest)
		return
	}
	height, ok := dimension(req, "h", rows)
	if !ok {
		http.Error(w, "bad height", http.StatusBadRequest)
		return
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, h.src.CopyImage(width, height)); err != nil {
		glog.Errorf("Error while encoding preview: %v", err)
		http.Error(w, "error encoding preview", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

const statusHTML = `<!DOCTYPE html>
<html>
<head>
<title>harpoon: {{.Scene}}</title>
<meta http-equiv="refresh" content="5">
</head>
<body>
<h1>{{.Scene}}</h1>
<table>
<tr><td>Resolution</td><td>{{.Cols}}x{{.Rows}}</td></tr>
<tr><td>Samples per pixel</td><td>{{.SamplesPerPixel}}</td></tr>
<tr><td>Total samples</td><td>{{.TotalSamples}}</td></tr>
<tr><td>Elapsed</td><td>{{.Elapsed}}</td></tr>
</table>
<img src="/image.png" width="{{.Cols}}" height="{{.Rows}}">
</body>
</html>
`

var statusTemplate = template.Must(template.New("status").Parse(statusHTML))

type StatusData struct {
	Scene           string
	Cols, Rows      int
	SamplesPerPixel int64
	TotalSamples    int64
	Elapsed         time.Duration
}

func (h *Handler) Status() StatusData {
	cols, rows := h.src.Size()
	return StatusData{
		Scene:           h.name,
		Cols:            cols,
		Rows:            rows,
		SamplesPerPixel: h.src.SamplesPerPixel(),
		TotalSamples:    h.src.TotalSamples(),
		Elapsed:         time.Since(h.start).Round(time.Second),
	}
}

func (h *Handler) serveStatus(w http.ResponseWriter, req *http.Request) {
	tracer := otel.Tracer("row-major.net/harpoon/preview")
	_, span := tracer.Start(req.Context(), "Handler.serveStatus")
	defer span.End()

	if err := statusTemplate.Execute(w, h.Status()); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		return
	}
}
