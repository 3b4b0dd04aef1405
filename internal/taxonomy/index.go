package taxonomy

import (
	"strings"

	"github.com/soyeahso/ebirdmcp/internal/logging"
)

// buildIndex maps speciesCode to comName and lower(comName) to speciesCode
// in one map. Records missing either field are skipped. When two species
// share a lowercased common name the later record wins.
func buildIndex(records []map[string]any, log *logging.Logger) map[string]string {
	idx := make(map[string]string, len(records)*2)
	for _, rec := range records {
		code, _ := rec["speciesCode"].(string)
		name, _ := rec["comName"].(string)
		if code == "" || name == "" {
			continue
		}

		idx[code] = name

		key := strings.ToLower(name)
		if prev, ok := idx[key]; ok && prev != code {
			log.Debug().
				Str("name", key).
				Str("previous", prev).
				Str("code", code).
				Msg("duplicate common name, keeping later code")
		}
		idx[key] = code
	}
	return idx
}
