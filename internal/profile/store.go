// Package profile persists the cosmetic roster (names and avatars) between runs.
package profile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"impostor/internal/config"
	"impostor/internal/game"
)

var ErrInvalidAvatar = errors.New("invalid avatar")

// PresetAvatars are the built-in avatar ids
var PresetAvatars = []string{
	"avatar-user",
	"avatar-elmer",
	"avatar-sandra",
	"avatar-fox",
	"avatar-owl",
	"avatar-robot",
}

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// document is the on-disk layout
type document struct {
	Version int         `yaml:"version"`
	Roster  game.Roster `yaml:"roster"`
}

// Store reads and writes the roster profile file
type Store struct {
	mu             sync.Mutex
	path           string
	maxAvatarBytes int
	log            *zap.Logger
}

// NewStore creates a profile store for the configured path
func NewStore(cfg config.ProfileSettings, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:           cfg.Path,
		maxAvatarBytes: cfg.MaxAvatarBytes,
		log:            logger.Named("profile"),
	}
}

// Load returns the saved roster, or fallback when nothing has been saved yet
func (s *Store) Load(fallback game.Roster) (game.Roster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("reading profile %s: %w", s.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fallback, fmt.Errorf("parsing profile %s: %w", s.path, err)
	}
	if err := s.Validate(doc.Roster); err != nil {
		return fallback, fmt.Errorf("profile %s: %w", s.path, err)
	}

	s.log.Debug("profile loaded", zap.String("path", s.path))
	return doc.Roster, nil
}

// Save validates and writes the roster atomically
func (s *Store) Save(r game.Roster) error {
	r = Normalize(r)
	if err := s.Validate(r); err != nil {
		return err
	}

	data, err := yaml.Marshal(document{Version: 1, Roster: r})
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing profile: %w", err)
	}

	s.log.Info("profile saved", zap.String("path", s.path))
	return nil
}

// Validate checks names and avatars of every seat
func (s *Store) Validate(r game.Roster) error {
	if err := config.ValidateRoster(r); err != nil {
		return err
	}
	for _, p := range []game.PlayerConfig{r.User, r.AI1, r.AI2} {
		if err := ValidateAvatar(p.Avatar, s.maxAvatarBytes); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}

// Normalize trims whitespace from names and avatars
func Normalize(r game.Roster) game.Roster {
	trim := func(p game.PlayerConfig) game.PlayerConfig {
		return game.PlayerConfig{Name: strings.TrimSpace(p.Name), Avatar: strings.TrimSpace(p.Avatar)}
	}
	return game.Roster{User: trim(r.User), AI1: trim(r.AI1), AI2: trim(r.AI2)}
}

// ValidateAvatar accepts a preset id or a base64 image data URI no larger than maxBytes
// once decoded. A maxBytes of zero disables the size check.
func ValidateAvatar(avatar string, maxBytes int) error {
	if slices.Contains(PresetAvatars, avatar) {
		return nil
	}

	rest, ok := strings.CutPrefix(avatar, "data:")
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidAvatar, avatar)
	}
	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidAvatar)
	}
	if !slices.Contains(allowedImageTypes, strings.ToLower(mediaType)) {
		return fmt.Errorf("%w: unsupported image type %q", ErrInvalidAvatar, mediaType)
	}

	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return fmt.Errorf("%w: image larger than %d bytes", ErrInvalidAvatar, maxBytes)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvatar, err)
	}
	if len(decoded) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidAvatar)
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return fmt.Errorf("%w: image larger than %d bytes", ErrInvalidAvatar, maxBytes)
	}
	return nil
}

// IsPreset reports whether the avatar is a built-in id rather than an uploaded image
func IsPreset(avatar string) bool {
	return slices.Contains(PresetAvatars, avatar)
}
