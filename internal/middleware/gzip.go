package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// compressibleTypes перечисляет типы содержимого ответа, которые сжимаются при поддержке gzip клиентом.
var compressibleTypes = []string{
	"application/json",
	"text/html",
	"text/plain",
}

var compressor = chimw.NewCompressor(gzip.BestSpeed, compressibleTypes...)

// MaxBodyBytes ограничивает размер тела запроса после распаковки.
// Ограничение (chi middleware.RequestSize) подключается после GzipMiddleware.
const MaxBodyBytes int64 = 1 << 20

// GzipMiddleware распаковывает тело запроса с Content-Encoding: gzip и сжимает ответ,
// если клиент передал Accept-Encoding: gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	compressed := compressor.Handler(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			gr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
			defer gr.Close()

			r.Body = readCloser{Reader: gr, closer: r.Body}
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
		}

		compressed.ServeHTTP(w, r)
	})
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc readCloser) Close() error {
	return rc.closer.Close()
}
