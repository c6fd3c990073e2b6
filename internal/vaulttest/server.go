// Package vaulttest runs an in-memory stand-in for the secrets server that
// covers the token, KV v1 and sys/mounts endpoints used by this module's
// tests. It keeps just enough state to make round trips observable.
package vaulttest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RootToken is the token every Server starts with.
const RootToken = "root"

const defaultTTL = 768 * time.Hour

// Recorded is a request as received by the server.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   []byte
}

// Role is a token role usable with auth/token/create/{role}.
type Role struct {
	Policies  []string
	Orphan    bool
	Renewable bool
}

type tokenEntry struct {
	ID          string
	Accessor    string
	Parent      string
	Policies    []string
	Meta        map[string]string
	DisplayName string
	Path        string
	Type        string
	Orphan      bool
	Renewable   bool
	NumUses     int
	TTL         time.Duration
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Server is a fake secrets server. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	tokens     map[string]*tokenEntry
	accessors  map[string]string
	roles      map[string]Role
	mounts     map[string]string
	kv         map[string]map[string]json.RawMessage
	recorded   []Recorded
	requestSeq int
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		tokens:    make(map[string]*tokenEntry),
		accessors: make(map[string]string),
		roles:     make(map[string]Role),
		mounts:    map[string]string{"sys": "system"},
		kv:        make(map[string]map[string]json.RawMessage),
	}
	s.addToken(&tokenEntry{
		ID:          RootToken,
		Accessor:    randomID("acc"),
		Policies:    []string{"root"},
		DisplayName: "root",
		Path:        "auth/token/root",
		Type:        "service",
		Orphan:      true,
		CreatedAt:   time.Now(),
	})

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// AddRole registers a token role.
func (s *Server) AddRole(name string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[name] = role
}

// Mount enables an engine without going through the API.
func (s *Server) Mount(path, engine string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mount(strings.Trim(path, "/"), engine)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.recorded...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recorded) == 0 {
		return Recorded{}
	}
	return s.recorded[len(s.recorded)-1]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/v1/")
	callerToken := r.Header.Get("X-Vault-Token")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recorded = append(s.recorded, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Token:  callerToken,
		Body:   body,
	})

	if !strings.HasPrefix(r.URL.Path, "/v1/") {
		writeErrors(w, http.StatusNotFound)
		return
	}

	caller, ok := s.tokens[callerToken]
	if !ok || s.expired(caller) {
		writeErrors(w, http.StatusForbidden, "permission denied")
		return
	}

	switch {
	case strings.HasPrefix(path, "auth/token/"):
		s.serveToken(w, r.Method, strings.TrimPrefix(path, "auth/token/"), caller, body)
	case path == "sys/mounts" || strings.HasPrefix(path, "sys/mounts/"):
		s.serveMounts(w, r.Method, strings.TrimPrefix(strings.TrimPrefix(path, "sys/mounts"), "/"), body)
	default:
		s.serveKV(w, r, path, body)
	}
}

func (s *Server) serveToken(w http.ResponseWriter, method, op string, caller *tokenEntry, body []byte) {
	switch {
	case op == "lookup-self" && method == http.MethodGet:
		s.writeData(w, s.lookupData(caller, true))
	case op == "lookup" && method == http.MethodPost:
		entry, ok := s.tokens[gjson.GetBytes(body, "token").String()]
		if !ok {
			writeErrors(w, http.StatusForbidden, "bad token")
			return
		}
		s.writeData(w, s.lookupData(entry, true))
	case op == "lookup-accessor" && method == http.MethodPost:
		entry, ok := s.byAccessor(gjson.GetBytes(body, "accessor").String())
		if !ok {
			writeErrors(w, http.StatusBadRequest, "invalid accessor")
			return
		}
		s.writeData(w, s.lookupData(entry, false))
	case op == "create" || op == "create-orphan":
		s.create(w, caller, op == "create-orphan", "", body)
	case strings.HasPrefix(op, "create/"):
		s.create(w, caller, false, strings.TrimPrefix(op, "create/"), body)
	case op == "renew":
		s.renew(w, s.tokens[gjson.GetBytes(body, "token").String()], body)
	case op == "renew-accessor":
		entry, _ := s.byAccessor(gjson.GetBytes(body, "accessor").String())
		s.renew(w, entry, body)
	case op == "renew-self":
		s.renew(w, caller, body)
	case op == "revoke":
		s.revoke(w, s.tokens[gjson.GetBytes(body, "token").String()], false)
	case op == "revoke-orphan":
		s.revoke(w, s.tokens[gjson.GetBytes(body, "token").String()], true)
	case op == "revoke-accessor":
		entry, _ := s.byAccessor(gjson.GetBytes(body, "accessor").String())
		s.revoke(w, entry, false)
	case op == "revoke-self":
		s.revoke(w, caller, false)
	default:
		writeErrors(w, http.StatusMethodNotAllowed, "unsupported operation")
	}
}

type createBody struct {
	ID              string            `json:"id"`
	RoleName        string            `json:"role_name"`
	Policies        []string          `json:"policies"`
	Meta            map[string]string `json:"meta"`
	NoParent        bool              `json:"no_parent"`
	NoDefaultPolicy bool              `json:"no_default_policy"`
	Renewable       *bool             `json:"renewable"`
	TTL             string            `json:"ttl"`
	Type            string            `json:"type"`
	DisplayName     string            `json:"display_name"`
	NumUses         int               `json:"num_uses"`
}

func (s *Server) create(w http.ResponseWriter, caller *tokenEntry, orphan bool, roleName string, body []byte) {
	var req createBody
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeErrors(w, http.StatusBadRequest, "failed to parse JSON input: "+err.Error())
			return
		}
	}
	if roleName == "" {
		roleName = req.RoleName
	}

	entry := &tokenEntry{
		ID:          req.ID,
		Accessor:    randomID("acc"),
		Parent:      caller.ID,
		Meta:        req.Meta,
		DisplayName: "token",
		Path:        "auth/token/create",
		Type:        "service",
		Orphan:      orphan || req.NoParent,
		Renewable:   true,
		NumUses:     req.NumUses,
		TTL:         defaultTTL,
		CreatedAt:   time.Now(),
	}
	if entry.ID == "" {
		entry.ID = randomID("hvs")
	}
	if _, exists := s.tokens[entry.ID]; exists {
		writeErrors(w, http.StatusBadRequest, "cannot use a token ID that is in use")
		return
	}
	if req.DisplayName != "" {
		entry.DisplayName = "token-" + req.DisplayName
	}
	if req.Type != "" {
		entry.Type = strings.TrimPrefix(req.Type, "default-")
	}
	if orphan {
		entry.Path = "auth/token/create-orphan"
	}

	policies := req.Policies
	if roleName != "" {
		role, ok := s.roles[roleName]
		if !ok {
			writeErrors(w, http.StatusBadRequest, "unknown role "+roleName)
			return
		}
		entry.Path = "auth/token/create/" + roleName
		entry.Orphan = role.Orphan
		entry.Renewable = role.Renewable
		if len(policies) == 0 {
			policies = role.Policies
		}
	}
	if req.Renewable != nil {
		entry.Renewable = *req.Renewable
	}
	if req.TTL != "" {
		ttl, err := parseDuration(req.TTL)
		if err != nil {
			writeErrors(w, http.StatusBadRequest, err.Error())
			return
		}
		entry.TTL = ttl
	}
	if !req.NoDefaultPolicy {
		policies = append([]string{"default"}, policies...)
	}
	entry.Policies = dedupe(policies)
	entry.ExpiresAt = entry.CreatedAt.Add(entry.TTL)
	if entry.Orphan {
		entry.Parent = ""
	}

	s.addToken(entry)
	s.writeAuth(w, entry)
}

func (s *Server) renew(w http.ResponseWriter, entry *tokenEntry, body []byte) {
	if entry == nil {
		writeErrors(w, http.StatusBadRequest, "token not found")
		return
	}
	if !entry.Renewable {
		writeErrors(w, http.StatusBadRequest, "lease is not renewable")
		return
	}

	ttl := entry.TTL
	if inc := gjson.GetBytes(body, "increment"); inc.Exists() {
		d, err := parseDuration(inc.String())
		if err != nil {
			writeErrors(w, http.StatusBadRequest, err.Error())
			return
		}
		if d < ttl {
			ttl = d
		}
	}
	entry.ExpiresAt = time.Now().Add(ttl)

	s.writeAuthTTL(w, entry, ttl)
}

func (s *Server) revoke(w http.ResponseWriter, entry *tokenEntry, orphanChildren bool) {
	if entry == nil {
		writeErrors(w, http.StatusBadRequest, "token not found")
		return
	}
	s.revokeTree(entry, orphanChildren)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) revokeTree(entry *tokenEntry, orphanChildren bool) {
	for _, child := range s.tokens {
		if child.Parent != entry.ID {
			continue
		}
		if orphanChildren {
			child.Parent = ""
			child.Orphan = true
		} else {
			s.revokeTree(child, false)
		}
	}
	delete(s.tokens, entry.ID)
	delete(s.accessors, entry.Accessor)
}

func (s *Server) serveMounts(w http.ResponseWriter, method, path string, body []byte) {
	path = strings.Trim(path, "/")
	switch {
	case path == "" && method == http.MethodGet:
		mounts := make(map[string]any, len(s.mounts))
		for p, engine := range s.mounts {
			mounts[p+"/"] = map[string]any{
				"type":        engine,
				"description": "",
				"accessor":    engine + "_" + p,
				"options":     nil,
				"config":      map[string]any{"default_lease_ttl": 0, "max_lease_ttl": 0},
			}
		}
		s.writeData(w, mounts)
	case path != "" && method == http.MethodPost:
		engine := gjson.GetBytes(body, "type").String()
		if engine == "" {
			writeErrors(w, http.StatusBadRequest, "backend type must be specified as a string")
			return
		}
		if _, exists := s.mounts[path]; exists {
			writeErrors(w, http.StatusBadRequest, fmt.Sprintf("path is already in use at %s/", path))
			return
		}
		s.mount(path, engine)
		w.WriteHeader(http.StatusNoContent)
	case path != "" && method == http.MethodDelete:
		delete(s.mounts, path)
		delete(s.kv, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrors(w, http.StatusMethodNotAllowed, "unsupported operation")
	}
}

func (s *Server) mount(path, engine string) {
	s.mounts[path] = engine
	if engine == "kv" {
		s.kv[path] = make(map[string]json.RawMessage)
	}
}

func (s *Server) serveKV(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	mount, key := s.resolveMount(path)
	store, ok := s.kv[mount]
	if !ok {
		writeErrors(w, http.StatusNotFound, "no handler for route \""+path+"\". route entry not found.")
		return
	}

	list := r.Method == "LIST" || (r.Method == http.MethodGet && r.URL.Query().Get("list") == "true")
	switch {
	case list:
		keys := listKeys(store, key)
		if len(keys) == 0 {
			writeErrors(w, http.StatusNotFound)
			return
		}
		s.writeData(w, map[string]any{"keys": keys})
	case r.Method == http.MethodGet:
		data, ok := store[key]
		if !ok || key == "" {
			writeErrors(w, http.StatusNotFound)
			return
		}
		s.writeData(w, data)
	case r.Method == http.MethodPost || r.Method == http.MethodPut:
		if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
			writeErrors(w, http.StatusBadRequest, "failed to parse JSON input")
			return
		}
		store[key] = json.RawMessage(append([]byte(nil), body...))
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete:
		delete(store, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeErrors(w, http.StatusMethodNotAllowed, "unsupported operation")
	}
}

// resolveMount finds the longest mount that prefixes path.
func (s *Server) resolveMount(path string) (string, string) {
	best := ""
	for m := range s.mounts {
		if (path == m || strings.HasPrefix(path, m+"/")) && len(m) > len(best) {
			best = m
		}
	}
	return best, strings.Trim(strings.TrimPrefix(path, best), "/")
}

func listKeys(store map[string]json.RawMessage, prefix string) []string {
	if prefix != "" {
		prefix += "/"
	}
	seen := make(map[string]struct{})
	for key := range store {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || rest == "" {
			continue
		}
		if head, _, nested := strings.Cut(rest, "/"); nested {
			rest = head + "/"
		}
		seen[rest] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) lookupData(e *tokenEntry, withID bool) map[string]any {
	data := map[string]any{
		"accessor":         e.Accessor,
		"creation_time":    e.CreatedAt.Unix(),
		"creation_ttl":     int64(e.TTL.Seconds()),
		"display_name":     e.DisplayName,
		"entity_id":        "",
		"expire_time":      nil,
		"explicit_max_ttl": 0,
		"id":               "",
		"issue_time":       e.CreatedAt.Format(time.RFC3339Nano),
		"meta":             e.Meta,
		"num_uses":         e.NumUses,
		"orphan":           e.Orphan,
		"path":             e.Path,
		"policies":         e.Policies,
		"renewable":        e.Renewable,
		"ttl":              0,
		"type":             e.Type,
	}
	if withID {
		data["id"] = e.ID
	}
	if !e.ExpiresAt.IsZero() {
		data["expire_time"] = e.ExpiresAt.Format(time.RFC3339Nano)
		data["ttl"] = int64(time.Until(e.ExpiresAt).Seconds())
	}
	return data
}

func (s *Server) writeData(w http.ResponseWriter, data any) {
	out := s.envelope()
	out, _ = sjson.SetBytes(out, "lease_duration", 0)
	if raw, ok := data.(json.RawMessage); ok {
		out, _ = sjson.SetRawBytes(out, "data", raw)
	} else {
		out, _ = sjson.SetBytes(out, "data", data)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeAuth(w http.ResponseWriter, e *tokenEntry) {
	s.writeAuthTTL(w, e, e.TTL)
}

func (s *Server) writeAuthTTL(w http.ResponseWriter, e *tokenEntry, ttl time.Duration) {
	out := s.envelope()
	out, _ = sjson.SetBytes(out, "auth", map[string]any{
		"client_token":   e.ID,
		"accessor":       e.Accessor,
		"policies":       e.Policies,
		"token_policies": e.Policies,
		"metadata":       e.Meta,
		"lease_duration": int64(ttl.Seconds()),
		"renewable":      e.Renewable,
		"entity_id":      "",
		"token_type":     e.Type,
		"orphan":         e.Orphan,
		"num_uses":       e.NumUses,
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) envelope() []byte {
	s.requestSeq++
	out := []byte(`{"lease_id":"","renewable":false,"lease_duration":0,"data":null,"wrap_info":null,"warnings":null,"auth":null}`)
	out, _ = sjson.SetBytes(out, "request_id", fmt.Sprintf("req-%d", s.requestSeq))
	return out
}

func writeErrors(w http.ResponseWriter, status int, messages ...string) {
	out, _ := sjson.SetBytes([]byte(`{}`), "errors", append([]string{}, messages...))
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) addToken(e *tokenEntry) {
	s.tokens[e.ID] = e
	s.accessors[e.Accessor] = e.ID
}

func (s *Server) byAccessor(accessor string) (*tokenEntry, bool) {
	id, ok := s.accessors[accessor]
	if !ok {
		return nil, false
	}
	entry, ok := s.tokens[id]
	return entry, ok
}

func (s *Server) expired(e *tokenEntry) bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// parseDuration accepts "1h"-style durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func randomID(prefix string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return prefix + "." + hex.EncodeToString(b)
}
