package garnish

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/garnish-lang/web-garnish/internal/lang/vm"
	"github.com/garnish-lang/web-garnish/internal/serialize"
)

// SharedState is the process-wide, deeply-immutable state every request
// clones from. It is constructed once at startup and never mutated
// afterward; handlers only ever touch clones of Interp, never Interp
// itself.
type SharedState struct {
	Routes  RouteMap
	Interp  *vm.Interpreter
	Symbols *SymbolContext
	Log     zerolog.Logger
}

// candidateKeys computes the dispatch candidate order for a request:
// method-qualified exact path, method-qualified index fallback, exact
// path, index fallback — in that precedence order.
func candidateKeys(method, path string) []string {
	page := strings.Trim(path, "/")
	pageIndex := "index"
	if page != "" {
		pageIndex = page + "/index"
	}
	return []string{
		method + "@" + page,
		method + "@" + pageIndex,
		page,
		pageIndex,
	}
}

// Handler returns an http.HandlerFunc implementing the candidate-key
// dispatch algorithm: chi only supplies connection plumbing (mounted on
// "/" and "/*" for every method by the caller), this function is the
// actual router.
func (s *SharedState) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var routeInfo RouteInfo
		var found bool
		for _, key := range candidateKeys(r.Method, r.URL.Path) {
			if info, ok := s.Routes[key]; ok {
				routeInfo = info
				found = true
				break
			}
		}
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		clone := s.Interp.Clone()
		if err := clone.Seed(routeInfo.ExecutionStart); err != nil {
			s.Log.Error().Err(err).Str("path", r.URL.Path).Msg("seeding request interpreter failed")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := clone.Run(s.Symbols); err != nil {
			s.Log.Error().Err(err).Str("path", r.URL.Path).Msg("executing request failed")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		current, ok := clone.CurrentValue()
		if !ok {
			s.Log.Error().Str("path", r.URL.Path).Msg("request produced no terminal value")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var body string
		var err error
		switch routeInfo.FileType {
		case FileTypeCSS:
			body, err = serialize.DeserializeCSS(current, clone)
		default:
			body, err = serialize.DeserializeHTML(current, clone)
		}
		if err != nil {
			s.Log.Error().Err(err).Str("path", r.URL.Path).Msg("deserializing response failed")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		// Content-Type is always text/html, even for Css files — the
		// documented, tested behavior, not a bug.
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}
