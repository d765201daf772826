package server

import (
	"fmt"
	"html"
	"net/http"
	"sync"
)

// CallbackHandler captures the first authorization redirect it receives.
//
// It does not interpret the redirect: the captured URL is handed to the authenticator, which checks state and
// exchanges the code. Later requests are rejected.
type CallbackHandler struct {
	path    string
	results chan string
	once    sync.Once
	mu      sync.Mutex
	hit     bool
}

// NewCallbackHandler creates a handler serving the redirect path (e.g. "/callback").
func NewCallbackHandler(path string) *CallbackHandler {
	if path == "" {
		path = "/"
	}
	return &CallbackHandler{path: path, results: make(chan string, 1)}
}

func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP records the full redirect URL and answers with a page telling the operator to return to the terminal.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	h.send("http://" + r.Host + r.URL.RequestURI())

	title, message, color := "Authorization Received", "You can close this window and return to the terminal.", "#1DB954"
	if reason := r.URL.Query().Get("error"); reason != "" {
		title, message, color = "Authorization Failed", "Spotify reported: "+html.EscapeString(reason), "#E22134"
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
	} else {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
	}

	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: %[3]s; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>
`, title, message, color)
}

func (h *CallbackHandler) send(redirect string) {
	h.once.Do(func() {
		h.results <- redirect
		close(h.results)
	})
}

// Result receives exactly one redirect URL and is then closed.
func (h *CallbackHandler) Result() <-chan string {
	return h.results
}
