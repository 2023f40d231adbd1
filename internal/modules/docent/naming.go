package docent

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const maxSlugRunes = 40

const (
	AudioDir  = "docent/mp3"
	VideoDir  = "docent/video"
	AvatarDir = "docent/tmp"
	ArtDir    = "art"
	PosterDir = "poster"
)

var lower = cases.Lower(language.Und)

// Slugify lowercases s, joins whitespace runs with "_", drops everything that
// is not an ASCII letter/digit, a Hangul letter, "_" or "-", and keeps at most
// 40 runes.
func Slugify(s string) string {
	s = lower.String(norm.NFC.String(strings.TrimSpace(s)))
	var b strings.Builder
	n := 0
	pendingSep := false
	for _, r := range s {
		if n >= maxSlugRunes {
			break
		}
		if unicode.IsSpace(r) {
			pendingSep = n > 0
			continue
		}
		if !slugRune(r) {
			continue
		}
		if pendingSep {
			b.WriteRune('_')
			n++
			pendingSep = false
			if n >= maxSlugRunes {
				break
			}
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimRight(b.String(), "_")
}

func slugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		return true
	case unicode.Is(unicode.Hangul, r):
		return true
	default:
		return false
	}
}

// MediaBaseName builds "{id}_{slug}_{ts}", or "{id}_{ts}" when the slug is empty.
func MediaBaseName(id uint, displayName string, unixTS int64) string {
	if slug := Slugify(displayName); slug != "" {
		return fmt.Sprintf("%d_%s_%d", id, slug, unixTS)
	}
	return fmt.Sprintf("%d_%d", id, unixTS)
}

func AudioPath(base string) string { return path.Join(AudioDir, base+".mp3") }

func VideoPath(base string) string { return path.Join(VideoDir, base+".mp4") }

func PosterPath(base string) string { return path.Join(PosterDir, base+".png") }

func ArtImagePath(base, ext string) string { return path.Join(ArtDir, base+normalizeExt(ext)) }

// AvatarCachePath maps a remote image URL to its content-addressed cache path.
func AvatarCachePath(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	return path.Join(AvatarDir, "avatar_"+hex.EncodeToString(sum[:])[:16]+urlImageExt(rawURL))
}

func urlImageExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	return normalizeExt(path.Ext(p))
}

func normalizeExt(ext string) string {
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".png":
		return ".png"
	case ".webp":
		return ".webp"
	case ".jpeg", ".jpg":
		return ".jpg"
	default:
		return ".jpg"
	}
}

const promptTemplate = "A museum docent stands beside the artwork and explains it to visitors in a calm, warm voice, facing the camera with natural gestures. Narration: %q"

// BuildPrompt embeds a preview of the script into the fixed generation prompt.
func BuildPrompt(script string, previewRunes int) string {
	return fmt.Sprintf(promptTemplate, truncateRunes(strings.Join(strings.Fields(script), " "), previewRunes))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
