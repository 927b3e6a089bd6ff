// Package cookies stores the Authorization bearer cookie the backend issues.
// The value is kept in document.cookie format ("name=value; name2=value2") and
// persisted to a file so the token survives client restarts.
package cookies

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// AuthCookieName is the cookie carrying the bearer token ("Bearer <jwt>").
const AuthCookieName = "Authorization"

// ErrNotFound is returned when the requested cookie is not present.
var ErrNotFound = errors.New("cookie not found")

// Value extracts a cookie value from a semicolon-delimited cookie string.
// Returns ErrNotFound when the named cookie is absent.
func Value(cookieString, name string) (string, error) {
	for _, part := range strings.Split(cookieString, ";") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		if pair[0] == name {
			return pair[1], nil
		}
	}
	return "", ErrNotFound
}

// Store is a file-backed cookie jar holding the client's cookies.
type Store struct {
	path    string
	mutex   sync.RWMutex
	cookies map[string]string
}

// NewStore creates a store backed by the given file. A missing file is not an
// error; the store starts empty.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, cookies: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	for _, part := range strings.Split(string(data), ";") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) == 2 && pair[0] != "" {
			s.cookies[pair[0]] = pair[1]
		}
	}
	return s, nil
}

// Get returns the value of the named cookie.
func (s *Store) Get(name string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.cookies[name]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set overwrites the named cookie and persists the store.
func (s *Store) Set(name, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.cookies[name] = value
	return s.flush()
}

// Delete removes the named cookie and persists the store.
func (s *Store) Delete(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.cookies, name)
	return s.flush()
}

// String renders the store in document.cookie format. Order is not guaranteed.
func (s *Store) String() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.render()
}

func (s *Store) render() string {
	parts := make([]string, 0, len(s.cookies))
	for name, value := range s.cookies {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, "; ")
}

// flush writes the cookie string to disk. Caller must hold the write lock.
func (s *Store) flush() error {
	return os.WriteFile(s.path, []byte(s.render()), 0o600)
}
