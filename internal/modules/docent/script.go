package docent

import (
	"strings"

	types "github.com/yungbote/artspace-backend/internal/domain"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
)

// ResolveScript picks the narration text: caller override, then the curator's
// docent text, then the general description.
func ResolveScript(art *types.Art, override string) (string, error) {
	if s := strings.TrimSpace(override); s != "" {
		return override, nil
	}
	if art != nil {
		if s := strings.TrimSpace(art.DocentText); s != "" {
			return s, nil
		}
		if s := strings.TrimSpace(art.Description); s != "" {
			return s, nil
		}
	}
	return "", apierr.Validation("no script available")
}
