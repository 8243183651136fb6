package middleware

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type brotliResponseWriter struct {
	io.Writer
	http.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliResponseWriter) WriteHeader(code int) {
	w.Header().Del(echo.HeaderContentLength)
	if code == http.StatusNoContent || code == http.StatusNotModified {
		w.Header().Del(echo.HeaderContentEncoding)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *brotliResponseWriter) Write(b []byte) (int, error) {
	if w.Header().Get(echo.HeaderContentType) == "" {
		w.Header().Set(echo.HeaderContentType, http.DetectContentType(b))
	}
	return w.Writer.Write(b)
}

func (w *brotliResponseWriter) Flush() {
	_ = w.bw.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *brotliResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *brotliResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Compress encodes responses with brotli when the client accepts it and
// falls back to gzip otherwise.
func Compress() echo.MiddlewareFunc {
	gzip := middleware.Gzip()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		gzipNext := gzip(next)

		return func(c echo.Context) error {
			if !strings.Contains(c.Request().Header.Get(echo.HeaderAcceptEncoding), "br") {
				return gzipNext(c)
			}

			res := c.Response()
			res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)
			res.Header().Set(echo.HeaderContentEncoding, "br")

			original := res.Writer
			bw := brotli.NewWriterLevel(original, brotli.DefaultCompression)
			res.Writer = &brotliResponseWriter{Writer: bw, ResponseWriter: original, bw: bw}

			defer func() {
				if res.Size == 0 {
					if !res.Committed {
						res.Header().Del(echo.HeaderContentEncoding)
					}
					bw.Reset(io.Discard)
				}
				_ = bw.Close()
				res.Writer = original
			}()

			return next(c)
		}
	}
}
