// Package ingress implements the HTTP input endpoint: GET / serves a plain
// HTML form for manual submission and POST / with form fields entity, name,
// version, value becomes an Input fact delivered to a Gardener.
//
// Grounded on the now-removed internal/infrastructure/api/rest/server.go's
// http.ServeMux-plus-method-pattern routing and ServeHTTP wrapper shape, and
// the now-removed internal/trigger/http.go's Handler(fn) decode-dispatch-encode
// shape (collapsed here to a single route, since the input endpoint only ever
// does one thing). Floods are capped with golang.org/x/time/rate, which the
// teacher's rest.ServerConfig named (EnableRateLimit) but never wired up. The
// GET form is carried over from original_source/garden/http.py's
// WebInputSource.render_GET, which spec.md's distillation dropped along with
// the rest of the Twisted web layer.
package ingress

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

const inputForm = `<html>
<body>
	<form method="post">
		entity: <input type="text" name="entity"><br>
		name: <input type="text" name="name"><br>
		version: <input type="text" name="version"><br>
		value: <input type="text" name="value"><br>
		<input type="submit" value="submit">
	</form>
</body>
</html>
`

// GardenerInput is the inbound collaborator; gardener.Gardener satisfies it.
type GardenerInput interface {
	InputReceived(ctx context.Context, in gardenmodel.Input) error
}

// Server is the HTTP input endpoint.
type Server struct {
	gardener GardenerInput
	limiter  *rate.Limiter
	mux      *http.ServeMux
}

// NewServer creates a Server delivering Input facts to gardener. A nil
// limiter disables rate limiting.
func NewServer(gardener GardenerInput, limiter *rate.Limiter) *Server {
	s := &Server{gardener: gardener, limiter: limiter, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /", s.handleForm)
	s.mux.HandleFunc("POST /", s.handleInput)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleForm serves a bare HTML form for manually submitting an Input fact,
// for operators without a scripted client handy.
func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(inputForm))
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Error().Err(err).Msg("ingress: malformed form body")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	in := gardenmodel.NewInput(
		r.FormValue("entity"),
		r.FormValue("name"),
		r.FormValue("version"),
		r.FormValue("value"),
	)

	if err := s.gardener.InputReceived(r.Context(), in); err != nil {
		log.Error().Err(err).Str("entity", in.Entity()).Str("name", in.Name()).
			Msg("ingress: input rejected")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
