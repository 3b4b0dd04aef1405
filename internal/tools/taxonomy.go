package tools

import (
	"context"

	"github.com/soyeahso/ebirdmcp/internal/mcp"
)

type taxonomyArgs struct {
	Locale string `json:"locale,omitempty" jsonschema:"description=The locale for the common names (e.g. 'es' or 'fr').,default=en"`
}

func (a *taxonomyArgs) SetDefaults() { a.Locale = "en" }

type speciesCodeArgs struct {
	CommonName string `json:"common_name" jsonschema:"description=The common name of the species (case-insensitive e.g. 'Horned Lark')."`
}

type commonNameArgs struct {
	SpeciesCode string `json:"species_code" jsonschema:"description=The species code (e.g. 'horlar')."`
}

// LookupResult is returned by the two cache lookup tools. A miss is a normal
// result with Found == false, not a tool error.
type LookupResult struct {
	Found       bool   `json:"found"`
	SpeciesCode string `json:"speciesCode,omitempty"`
	CommonName  string `json:"comName,omitempty"`
}

func registerTaxonomy(s *mcp.Server, d Deps) error {
	if err := mcp.AddTool(s, "get_ebird_taxonomy",
		"Get the full eBird taxonomy. The result is very large; prefer the species code and common name lookups.",
		func(ctx context.Context, a taxonomyArgs) (any, error) {
			return d.EBird.Taxonomy(ctx, a.Locale)
		}); err != nil {
		return err
	}

	if err := mcp.AddTool(s, "get_ebird_species_code",
		"Find the eBird species code for a common name.",
		func(ctx context.Context, a speciesCodeArgs) (any, error) {
			code, found, err := d.Taxonomy.CodeForName(ctx, a.CommonName)
			if err != nil {
				return nil, err
			}
			if !found {
				return LookupResult{CommonName: a.CommonName}, nil
			}
			return LookupResult{Found: true, SpeciesCode: code, CommonName: a.CommonName}, nil
		}); err != nil {
		return err
	}

	return mcp.AddTool(s, "get_ebird_common_name",
		"Find the common name for an eBird species code.",
		func(ctx context.Context, a commonNameArgs) (any, error) {
			name, found, err := d.Taxonomy.NameForCode(ctx, a.SpeciesCode)
			if err != nil {
				return nil, err
			}
			if !found {
				return LookupResult{SpeciesCode: a.SpeciesCode}, nil
			}
			return LookupResult{Found: true, SpeciesCode: a.SpeciesCode, CommonName: name}, nil
		})
}
