package validation

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gratitude/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Content length bounds, counted in runes after trimming.
const (
	ThanksTextMin   = 10
	ThanksTextMax   = 1000
	CommentTextMin  = 1
	CommentTextMax  = 500
	ReportReasonMin = 10
	ReportReasonMax = 500
)

// ErrProfanity is the message returned for rejected content.
const ErrProfanity = "content contains inappropriate language"

var defaultProfanity = []string{
	"amk",
	"aq",
	"orospu",
	"piç",
	"sik",
	"göt",
	"salak",
	"aptal",
	"gerizekalı",
	"mal",
	"ahmak",
}

var leet = strings.NewReplacer(
	"0", "o", "@", "o",
	"1", "i", "!", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
)

var (
	profanityMu sync.RWMutex
	profanity   = toSet(defaultProfanity)
	lower       = cases.Lower(language.Turkish)
)

type profanityFile struct {
	Words []string `yaml:"words"`
}

// LoadProfanityList replaces the word list with the one in path, a YAML
// document with a top-level "words" sequence. An empty path keeps the
// built-in list.
func LoadProfanityList(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profanity list: %w", err)
	}
	var f profanityFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse profanity list: %w", err)
	}
	if len(f.Words) == 0 {
		return fmt.Errorf("profanity list %s has no words", path)
	}

	set := toSet(f.Words)
	profanityMu.Lock()
	profanity = set
	profanityMu.Unlock()
	return nil
}

// ResetProfanityList restores the built-in list.
func ResetProfanityList() {
	profanityMu.Lock()
	profanity = toSet(defaultProfanity)
	profanityMu.Unlock()
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = lower.String(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// ContainsProfanity reports whether text contains a listed word as a whole
// word, either verbatim or after undoing common digit/symbol substitutions.
func ContainsProfanity(text string) bool {
	lowered := lower.String(text)

	profanityMu.RLock()
	defer profanityMu.RUnlock()

	if hasListedWord(lowered) {
		return true
	}
	return hasListedWord(leet.Replace(lowered))
}

func hasListedWord(s string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := profanity[w]; ok {
			return true
		}
	}
	return false
}

func checkText(field, text string, min, max int, checkProfanity bool) (string, error) {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	if n < min {
		if min == 1 {
			return "", models.NewFieldError(field, fmt.Sprintf("%s must not be empty", field))
		}
		return "", models.NewFieldError(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	}
	if n > max {
		return "", models.NewFieldError(field, fmt.Sprintf("%s must not exceed %d characters", field, max))
	}
	if checkProfanity && ContainsProfanity(trimmed) {
		return "", models.NewFieldError(field, ErrProfanity)
	}
	return trimmed, nil
}

// ThanksText validates and trims a thanks body.
func ThanksText(text string) (string, error) {
	return checkText("text", text, ThanksTextMin, ThanksTextMax, true)
}

// CommentText validates and trims a comment body.
func CommentText(text string) (string, error) {
	return checkText("text", text, CommentTextMin, CommentTextMax, true)
}

// ReportReason validates and trims a report reason.
func ReportReason(reason string) (string, error) {
	return checkText("reason", reason, ReportReasonMin, ReportReasonMax, false)
}
