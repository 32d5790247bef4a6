// Package koppeltaaltest runs an in-process koppeltaal server for tests. It
// keeps versioned resource history, enforces the message header claim state
// machine and serves the launch and OAuth endpoints with token rotation.
package koppeltaaltest

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const (
	DefaultUsername     = "test-app"
	DefaultPassword     = "test-secret"
	DefaultClientID     = "test-client"
	DefaultClientSecret = "test-client-secret"
	DefaultDomain       = "test-domain"
)

type Options struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	Domain       string
	// LaunchURL is where Launch sends the user agent. Defaults to
	// {server}/app/launch.
	LaunchURL string
	TokenTTL  time.Duration
}

type grant struct {
	clientID string
	patient  string
	user     string
	resource string
}

type Server struct {
	*httptest.Server
	opts      Options
	namespace extensions.Namespace

	mu       sync.Mutex
	history  map[string][]*fhir_dto.Resource
	headers  []string
	launches map[string]grant
	codes    map[string]grant
	access   map[string]grant
	refresh  map[string]string
	failures []int
	serial   int
}

func NewServer(opts Options) *Server {
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultClientID
	}
	if opts.ClientSecret == "" {
		opts.ClientSecret = DefaultClientSecret
	}
	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = time.Hour
	}

	s := &Server{
		opts:      opts,
		namespace: extensions.Namespace(constvars.KoppeltaalNamespace),
		history:   make(map[string][]*fhir_dto.Resource),
		launches:  make(map[string]grant),
		codes:     make(map[string]grant),
		access:    make(map[string]grant),
		refresh:   make(map[string]string),
	}
	s.Server = httptest.NewServer(s.routes())
	if s.opts.LaunchURL == "" {
		s.opts.LaunchURL = s.URL + "/app/launch"
	}
	return s
}

func (s *Server) Options() Options {
	return s.opts
}

// BaseURL is the FHIR base of the server.
func (s *Server) BaseURL() string {
	return s.URL + constvars.KoppeltaalFHIRPath
}

func (s *Server) Namespace() extensions.Namespace {
	return s.namespace
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.injectFailures)
	r.Route(constvars.KoppeltaalFHIRPath, func(r chi.Router) {
		r.Get(constvars.KoppeltaalMetadataPath, s.metadata)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post(constvars.KoppeltaalMailboxPath, s.mailbox)
			r.Get("/MessageHeader/_search", s.searchHeaders)
			r.Put("/MessageHeader/{id}/_history/{version}", s.updateHeader)
			r.Get("/Other", s.searchOther)
			r.Post("/Other", s.create)
			r.Get("/Other/{id}", s.read)
			r.Get("/Other/{id}/_history/{version}", s.read)
			r.Put("/Other/{id}/_history/{version}", s.update)
			r.Post("/{type}", s.create)
			r.Put("/{type}/{id}/_history/{version}", s.update)
			r.Get("/{type}/{id}", s.read)
			r.Get("/{type}/{id}/_history/{version}", s.read)
		})
	})
	r.Get(constvars.KoppeltaalLaunchPath, s.requireBasic(s.launch))
	r.Get(constvars.KoppeltaalMobileLaunchPath, s.requireBasic(s.mobileLaunch))
	r.Get(constvars.KoppeltaalAuthorizePath, s.authorize)
	r.Post(constvars.KoppeltaalTokenPath, s.token)
	return r
}

// FailNext makes the next request answer with status and an empty outcome.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, status)
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := 0
		if len(s.failures) > 0 {
			status, s.failures = s.failures[0], s.failures[1:]
		}
		s.mu.Unlock()
		if status != 0 {
			writeOutcome(w, status, "transient", http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.basicOK(r) || s.bearerOK(r) {
			next.ServeHTTP(w, r)
			return
		}
		writeOutcome(w, constvars.StatusUnauthorized, "security", "not authenticated")
	})
}

func (s *Server) requireBasic(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.basicOK(r) {
			writeOutcome(w, constvars.StatusUnauthorized, "security", "not authenticated")
			return
		}
		next(w, r)
	}
}

func (s *Server) basicOK(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	return ok && user == s.opts.Username && pass == s.opts.Password
}

func (s *Server) bearerOK(r *http.Request) bool {
	header := r.Header.Get(constvars.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, constvars.AuthSchemeBearer+" ")
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, live := s.access[token]
	return live
}

func (s *Server) nextSerial() string {
	s.serial++
	return strconv.Itoa(s.serial)
}

// store appends a new version of res and returns it. The caller holds mu.
func (s *Server) store(key string, res *fhir_dto.Resource) *fhir_dto.Resource {
	stored := clone(res)
	version := strconv.Itoa(len(s.history[key]) + 1)
	if stored.Meta == nil {
		stored.Meta = &fhir_dto.Meta{}
	}
	stored.Meta.VersionId = version
	now := time.Now().UTC()
	stored.Meta.LastUpdated = &now
	s.history[key] = append(s.history[key], stored)
	return stored
}

// current returns the latest version of key. The caller holds mu.
func (s *Server) current(key string) (*fhir_dto.Resource, bool) {
	versions := s.history[key]
	if len(versions) == 0 {
		return nil, false
	}
	return versions[len(versions)-1], true
}

func (s *Server) at(key, version string) (*fhir_dto.Resource, bool) {
	n, err := strconv.Atoi(version)
	versions := s.history[key]
	if err != nil || n < 1 || n > len(versions) {
		return nil, false
	}
	return versions[n-1], true
}

func (s *Server) selfURL(res *fhir_dto.Resource) string {
	return s.BaseURL() + "/" + res.ResourceType + "/" + res.ID + "/" + constvars.KoppeltaalHistorySegment + "/" + res.VersionID()
}

func (s *Server) entryOf(res *fhir_dto.Resource) fhir_dto.BundleEntry {
	return fhir_dto.BundleEntry{
		FullURL:  s.BaseURL() + "/" + res.ResourceType + "/" + res.ID,
		Link:     []fhir_dto.BundleLink{{Relation: constvars.BundleLinkSelf, URL: s.selfURL(res)}},
		Resource: clone(res),
	}
}

func key(resourceType, id string) string {
	return resourceType + "/" + id
}

func clone(res *fhir_dto.Resource) *fhir_dto.Resource {
	raw, _ := json.Marshal(res)
	out := new(fhir_dto.Resource)
	_ = json.Unmarshal(raw, out)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOutcome(w http.ResponseWriter, status int, code, diagnostics string) {
	writeJSON(w, status, fhir_dto.OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue:        []fhir_dto.Issue{{Severity: "error", Code: code, Diagnostics: diagnostics}},
	})
}
