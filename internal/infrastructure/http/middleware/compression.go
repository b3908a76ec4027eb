package middleware

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// CompressionConfig configures compression behavior
type CompressionConfig struct {
	BrotliLevel  int // 0-11
	GzipLevel    int // 1-9
	MinSizeBytes int
}

// DefaultCompressionConfig returns sensible defaults
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		BrotliLevel:  5,
		GzipLevel:    gzip.DefaultCompression,
		MinSizeBytes: 1024,
	}
}

// Compression buffers JSON responses and encodes them with brotli or gzip
// according to Accept-Encoding. Small or non-JSON bodies pass through as is.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if encoding == "" || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(bw, r)

			w.Header().Add("Vary", "Accept-Encoding")
			body := bw.buf.Bytes()
			if len(body) < cfg.MinSizeBytes || !isCompressibleType(w.Header().Get("Content-Type")) {
				w.WriteHeader(bw.status)
				_, _ = w.Write(body)
				return
			}

			compressed, err := compress(encoding, body, cfg)
			if err != nil || len(compressed) >= len(body) {
				w.WriteHeader(bw.status)
				_, _ = w.Write(body)
				return
			}

			w.Header().Set("Content-Encoding", encoding)
			w.Header().Set("Content-Length", strconv.Itoa(len(compressed)))
			w.WriteHeader(bw.status)
			_, _ = w.Write(compressed)
		})
	}
}

// negotiateEncoding picks br over gzip, honouring q=0 exclusions
func negotiateEncoding(header string) string {
	if header == "" {
		return ""
	}

	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		accepted[strings.ToLower(strings.TrimSpace(name))] = q > 0
	}

	switch {
	case accepted["br"]:
		return "br"
	case accepted["gzip"]:
		return "gzip"
	}
	return ""
}

func compress(encoding string, content []byte, cfg CompressionConfig) ([]byte, error) {
	var buf bytes.Buffer

	switch encoding {
	case "br":
		writer := brotli.NewWriterLevel(&buf, cfg.BrotliLevel)
		if _, err := writer.Write(content); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
	default:
		writer, err := gzip.NewWriterLevel(&buf, cfg.GzipLevel)
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write(content); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func isCompressibleType(contentType string) bool {
	mainType, _, _ := strings.Cut(contentType, ";")
	mainType = strings.TrimSpace(strings.ToLower(mainType))
	return mainType == "application/json" || strings.HasPrefix(mainType, "text/")
}

// bufferedWriter holds the status and body until the handler returns
type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.status = code
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	return bw.buf.Write(b)
}
