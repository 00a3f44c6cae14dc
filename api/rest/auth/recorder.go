package auth

import "net/http"

// buffers the headers gothic writes during the exchange so the worker never
// touches the live response; only Set-Cookie is replayed onto the redirect
type cookieRecorder struct {
	header http.Header
}

func newCookieRecorder() *cookieRecorder {
	return &cookieRecorder{header: make(http.Header)}
}

func (r *cookieRecorder) Header() http.Header {
	return r.header
}

func (r *cookieRecorder) Write(b []byte) (int, error) {
	return len(b), nil
}

func (r *cookieRecorder) WriteHeader(int) {}

func (r *cookieRecorder) replay(w http.ResponseWriter) {
	for _, cookie := range r.header.Values("Set-Cookie") {
		w.Header().Add("Set-Cookie", cookie)
	}
}
