package store

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/pthm/talui/lib/encoding"
	"github.com/pthm/talui/lib/model"
)

// Token keeps persistent layer values in encoded strings. A request loads the
// tokens it received, the model reads and writes through the store, and after
// a flush the updated tokens are sent back. A Token serves one request and is
// not safe for concurrent use.
type Token struct {
	enc       *encoding.Encoder
	sensitive bool
	tokens    map[string]string
	logger    *slog.Logger
}

// NewToken creates a token store. Tokens are encrypted when sensitive is true
// and signed otherwise.
func NewToken(enc *encoding.Encoder, sensitive bool, opts ...Option) *Token {
	o := newOptions(opts)
	return &Token{
		enc:       enc,
		sensitive: sensitive,
		tokens:    make(map[string]string),
		logger:    o.logger,
	}
}

// Load sets the token received for the named layer.
func (s *Token) Load(layer, token string) {
	s.tokens[layer] = token
}

// Token returns the current token of the named layer.
func (s *Token) Token(layer string) string {
	return s.tokens[layer]
}

// Tokens returns every current token keyed by layer name.
func (s *Token) Tokens() map[string]string {
	return maps.Clone(s.tokens)
}

// ModelAttributes decodes the token of cfg's layer. A layer without a token
// starts empty; a token that fails to decode is an error.
func (s *Token) ModelAttributes(cfg *model.Configuration) (map[string]any, error) {
	token, ok := s.tokens[cfg.Name()]
	if !ok || token == "" {
		return make(map[string]any), nil
	}
	raw, err := s.enc.Decode(token, s.sensitive)
	if err != nil {
		return nil, fmt.Errorf("store: token for layer %q: %w", cfg.Name(), err)
	}
	return restore(cfg, raw, s.logger), nil
}

// SaveModelAttributes re-encodes the persistent values of cfg.
func (s *Token) SaveModelAttributes(cfg *model.Configuration, values map[string]any) error {
	keep := persistent(cfg, values)
	if len(keep) == 0 {
		delete(s.tokens, cfg.Name())
		return nil
	}
	token, err := s.enc.Encode(keep, s.sensitive)
	if err != nil {
		return fmt.Errorf("store: encode layer %q: %w", cfg.Name(), err)
	}
	s.tokens[cfg.Name()] = token
	return nil
}
