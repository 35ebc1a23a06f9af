package profile

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"impostor/internal/config"
	"impostor/internal/game"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(config.ProfileSettings{
		Path:           filepath.Join(t.TempDir(), "nested", "profile.yaml"),
		MaxAvatarBytes: 64,
	}, zaptest.NewLogger(t))
}

func dataURI(mediaType string, size int) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", size)))
}

func TestStore_LoadMissingReturnsFallback(t *testing.T) {
	s := newTestStore(t)

	roster, err := s.Load(game.DefaultRoster())
	require.NoError(t, err)
	assert.Equal(t, game.DefaultRoster(), roster)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	roster := game.DefaultRoster()
	roster.User = game.PlayerConfig{Name: "  Ana  ", Avatar: dataURI("image/png", 10)}
	roster.AI2.Name = "Margo"

	require.NoError(t, s.Save(roster))

	loaded, err := s.Load(game.DefaultRoster())
	require.NoError(t, err)
	assert.Equal(t, "Ana", loaded.User.Name)
	assert.Equal(t, roster.User.Avatar, loaded.User.Avatar)
	assert.Equal(t, "Margo", loaded.AI2.Name)
	assert.Equal(t, "Elmer", loaded.AI1.Name)

	_, err = os.Stat(s.path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is cleaned up")
}

func TestStore_SaveRejectsInvalidRoster(t *testing.T) {
	s := newTestStore(t)

	roster := game.DefaultRoster()
	roster.AI1.Name = "A name that is far too long"
	assert.Error(t, s.Save(roster))

	roster = game.DefaultRoster()
	roster.AI1.Avatar = "avatar-dragon"
	assert.ErrorIs(t, s.Save(roster), ErrInvalidAvatar)

	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err), "nothing is written for an invalid roster")
}

func TestStore_LoadCorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.path), 0o755))
	require.NoError(t, os.WriteFile(s.path, []byte("roster: [unterminated"), 0o644))

	roster, err := s.Load(game.DefaultRoster())
	assert.Error(t, err)
	assert.Equal(t, game.DefaultRoster(), roster)
}

func TestValidateAvatar(t *testing.T) {
	tests := []struct {
		name    string
		avatar  string
		wantErr bool
	}{
		{"preset", "avatar-owl", false},
		{"png data uri", dataURI("image/png", 16), false},
		{"jpeg data uri", dataURI("image/jpeg", 64), false},
		{"too large", dataURI("image/png", 65), true},
		{"not an image", dataURI("text/html", 4), true},
		{"not base64", "data:image/png;base64,***", true},
		{"missing encoding", "data:image/png,abc", true},
		{"empty image", "data:image/png;base64,", true},
		{"unknown preset", "avatar-dragon", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAvatar(tt.avatar, 64)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAvatar)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
