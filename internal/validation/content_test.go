package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gratitude/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsProfanity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean", "Thank you for the quick delivery", false},
		{"whole word", "bu ne salak bir hizmet", true},
		{"upper case turkish", "GERİZEKALI müşteri hizmetleri", true},
		{"punctuation boundary", "aptal!", true},
		{"substring only", "malzeme çok iyiydi", false},
		{"leet digits", "s4l4k", true},
		{"leet symbols", "s!k", true},
		{"non ascii word", "göt", true},
		{"leet inside longer word", "ma1zeme", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsProfanity(tt.text))
		})
	}
}

func TestLoadProfanityList(t *testing.T) {
	t.Cleanup(ResetProfanityList)

	path := filepath.Join(t.TempDir(), "words.yml")
	require.NoError(t, os.WriteFile(path, []byte("words:\n  - Darn\n  - heck\n"), 0o600))
	require.NoError(t, LoadProfanityList(path))

	assert.True(t, ContainsProfanity("well darn it"))
	assert.True(t, ContainsProfanity("h3ck"))
	assert.False(t, ContainsProfanity("salak"))

	require.NoError(t, LoadProfanityList(""))
	assert.True(t, ContainsProfanity("well darn it"))

	empty := filepath.Join(t.TempDir(), "empty.yml")
	require.NoError(t, os.WriteFile(empty, []byte("words: []\n"), 0o600))
	assert.Error(t, LoadProfanityList(empty))
	assert.Error(t, LoadProfanityList(filepath.Join(t.TempDir(), "missing.yml")))

	ResetProfanityList()
	assert.True(t, ContainsProfanity("salak"))
}

func TestThanksText(t *testing.T) {
	got, err := ThanksText("   Thanks a lot, team!   ")
	require.NoError(t, err)
	assert.Equal(t, "Thanks a lot, team!", got)

	_, err = ThanksText("too short")
	assert.Error(t, err)

	_, err = ThanksText("          x          ")
	assert.Error(t, err)

	_, err = ThanksText(strings.Repeat("a", ThanksTextMax+1))
	assert.Error(t, err)

	_, err = ThanksText(strings.Repeat("ş", ThanksTextMax))
	assert.NoError(t, err)

	_, err = ThanksText("you are such an ahmak, really")
	assert.EqualError(t, err, ErrProfanity)
}

func TestCommentText(t *testing.T) {
	_, err := CommentText("   ")
	assert.EqualError(t, err, "text must not be empty")

	got, err := CommentText(" ok ")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = CommentText(strings.Repeat("b", CommentTextMax+1))
	assert.Error(t, err)

	_, err = CommentText("amk")
	assert.Error(t, err)
}

func TestReportReason(t *testing.T) {
	_, err := ReportReason("spam")
	assert.Error(t, err)

	got, err := ReportReason("  this is clearly spam content  ")
	require.NoError(t, err)
	assert.Equal(t, "this is clearly spam content", got)

	_, err = ReportReason(strings.Repeat("r", ReportReasonMax+1))
	assert.Error(t, err)
}

func TestContentErrorsCarryField(t *testing.T) {
	_, err := ReportReason("short")
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "reason", appErr.Field)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}
