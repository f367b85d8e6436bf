// Package store persists accounts, provider keys and generation preferences
// in a single JSON file. The file is read once when the store opens, cached
// in memory for the process lifetime and rewritten whole on every mutation.
// Two concurrent saves to the same account interleave as read-merge-write:
// the last writer wins. That is a documented limitation of the single-file
// design, not a guarantee.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"ugcstudio/internal/domain/fault"
)

// ErrNotFound is returned when no account exists for an identifier.
var ErrNotFound = errors.New("account not found")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	passcodeMinLen = 4
	passcodeMaxLen = 20
)

// Account is one record of the users file.
type Account struct {
	Email           string    `json:"email"`
	PasscodeHash    string    `json:"passcode_hash"`
	Token           string    `json:"token,omitempty"`
	OpenAIKey       string    `json:"openai_key,omitempty"`
	KieKey          string    `json:"kie_key,omitempty"`
	OpenAIModel     string    `json:"openai_model,omitempty"`
	VideoModel      string    `json:"video_model,omitempty"`
	ScriptRule      string    `json:"script_rule,omitempty"`
	VideoPromptRule string    `json:"video_prompt_rule,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastLoginAt     time.Time `json:"last_login_at,omitempty"`
}

// Patch carries a partial settings update. Nil fields are left untouched; a
// pointer to the empty string is a valid "clear this value" instruction,
// distinct from "unspecified".
type Patch struct {
	OpenAIKey       *string
	KieKey          *string
	OpenAIModel     *string
	VideoModel      *string
	ScriptRule      *string
	VideoPromptRule *string
}

// Effective is an account's settings with every empty field replaced by the
// process-wide default.
type Effective struct {
	OpenAIKey       string
	KieKey          string
	OpenAIModel     string
	VideoModel      string
	ScriptRule      string
	VideoPromptRule string
}

// Store is the flat-file account mapping keyed by normalized email.
type Store struct {
	path string

	mu       sync.RWMutex
	accounts map[string]Account
}

// Open loads the users file at path, creating its directory if needed. A
// missing file is an empty store, not an error.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: users file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure directory: %w", err)
	}
	s := &Store{path: path, accounts: map[string]Account{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("store: read users file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.accounts); err != nil {
			return nil, fmt.Errorf("store: decode users file: %w", err)
		}
	}
	return s, nil
}

// NormalizeEmail canonicalizes an account identifier: NFKC normalization,
// whitespace trim and lower-casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(email)))
}

// Get returns the account for the identifier, or ErrNotFound.
func (s *Store) Get(email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[NormalizeEmail(email)]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

// Put merges the supplied fields into an existing record and rewrites the
// file. Absent (nil) fields are left untouched.
func (s *Store) Put(email string, p Patch) (Account, error) {
	key := NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[key]
	if !ok {
		return Account{}, ErrNotFound
	}
	applyPatch(&acc, p)
	s.accounts[key] = acc
	if err := s.persistLocked(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Register creates a new account with a freshly issued session token.
func (s *Store) Register(email, passcode string, p Patch) (Account, error) {
	key := NormalizeEmail(email)
	if !emailPattern.MatchString(key) {
		return Account{}, fault.Invalid("invalid email address")
	}
	if len(passcode) < passcodeMinLen || len(passcode) > passcodeMaxLen {
		return Account{}, fault.Invalid("passcode must be %d-%d characters", passcodeMinLen, passcodeMaxLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("store: hash passcode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return Account{}, fault.Invalid("account already exists")
	}
	now := time.Now().UTC()
	acc := Account{
		Email:        key,
		PasscodeHash: string(hash),
		Token:        uuid.NewString(),
		CreatedAt:    now,
		LastLoginAt:  now,
	}
	applyPatch(&acc, p)
	s.accounts[key] = acc
	if err := s.persistLocked(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Login verifies the passcode and issues a fresh token, invalidating any
// prior one.
func (s *Store) Login(email, passcode string) (Account, error) {
	key := NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[key]
	if !ok {
		return Account{}, &fault.Auth{Message: "invalid email or passcode"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasscodeHash), []byte(passcode)); err != nil {
		return Account{}, &fault.Auth{Message: "invalid email or passcode"}
	}
	acc.Token = uuid.NewString()
	acc.LastLoginAt = time.Now().UTC()
	s.accounts[key] = acc
	if err := s.persistLocked(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// AccountByToken resolves a session token to the one account holding it.
func (s *Store) AccountByToken(token string) (Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, &fault.Auth{Message: "missing token"}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.Token != "" && acc.Token == token {
			return acc, nil
		}
	}
	return Account{}, &fault.Auth{Message: "invalid token"}
}

// Logout clears the stored token so the session cannot be resumed.
func (s *Store) Logout(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &fault.Auth{Message: "missing token"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, acc := range s.accounts {
		if acc.Token == token {
			acc.Token = ""
			s.accounts[key] = acc
			return s.persistLocked()
		}
	}
	return &fault.Auth{Message: "invalid token"}
}

// ResolveEffective returns the account's settings with empty fields replaced
// by process-wide defaults. An empty email yields pure defaults. Empty-string
// and never-set fields are treated alike: both fall back.
func (s *Store) ResolveEffective(email string) Effective {
	eff := Defaults()
	if strings.TrimSpace(email) == "" {
		return eff
	}
	acc, err := s.Get(email)
	if err != nil {
		return eff
	}
	eff.OpenAIKey = acc.OpenAIKey
	eff.KieKey = acc.KieKey
	if acc.OpenAIModel != "" {
		eff.OpenAIModel = acc.OpenAIModel
	}
	if acc.VideoModel != "" {
		eff.VideoModel = acc.VideoModel
	}
	if acc.ScriptRule != "" {
		eff.ScriptRule = acc.ScriptRule
	}
	if acc.VideoPromptRule != "" {
		eff.VideoPromptRule = acc.VideoPromptRule
	}
	return eff
}

// MaskKey renders an API key for display: the first 8 characters followed by
// a fixed mask. Short values are returned unchanged.
func MaskKey(key string) string {
	if len(key) < 12 {
		return key
	}
	return key[:8] + "********"
}

func applyPatch(acc *Account, p Patch) {
	if p.OpenAIKey != nil {
		acc.OpenAIKey = strings.TrimSpace(*p.OpenAIKey)
	}
	if p.KieKey != nil {
		acc.KieKey = strings.TrimSpace(*p.KieKey)
	}
	if p.OpenAIModel != nil {
		acc.OpenAIModel = strings.TrimSpace(*p.OpenAIModel)
	}
	if p.VideoModel != nil {
		acc.VideoModel = strings.TrimSpace(*p.VideoModel)
	}
	if p.ScriptRule != nil {
		acc.ScriptRule = strings.TrimSpace(*p.ScriptRule)
	}
	if p.VideoPromptRule != nil {
		acc.VideoPromptRule = strings.TrimSpace(*p.VideoPromptRule)
	}
}

// persistLocked rewrites the whole users file. Callers hold s.mu.
func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode users file: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("store: write users file: %w", err)
	}
	return nil
}
