package formtree

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formtree/pkg/formconfig"
)

//go:embed forms/*.yaml
var embeddedForms embed.FS

// FormsFS exposes the bundled example form configs (committed under forms/)
// so applications and the CLI can start from them without extra files.
func FormsFS() fs.FS {
	sub, err := fs.Sub(embeddedForms, "forms")
	if err != nil {
		return embeddedForms
	}
	return sub
}

// BundledForm returns the bundled form config with the given id.
func BundledForm(id string) (*FormConfig, error) {
	forms, err := formconfig.LoadFS(FormsFS())
	if err != nil {
		return nil, err
	}
	cfg, ok := forms[id]
	if !ok {
		return nil, fmt.Errorf("formtree: no bundled form %q", id)
	}
	return cfg, nil
}
