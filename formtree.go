package formtree

import (
	"context"

	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/formconfig"
	"github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/session"
)

// FormConfig aliases formconfig.FormConfig so callers can stay on the root
// package for the common path.
type FormConfig = formconfig.FormConfig

// Session aliases session.Session.
type Session = session.Session

// SessionOption aliases session.Option.
type SessionOption = session.Option

// User describes the acting user evaluated by access rules.
type User = access.User

// Result is the outcome of one access channel.
type Result = access.Result

// Access channels.
const (
	Visibility = access.ChannelVisibility
	Editable   = access.ChannelEditable
)

// Session options re-exported for convenience.
var (
	WithLogger         = session.WithLogger
	WithID             = session.WithID
	WithStatus         = session.WithStatus
	WithUser           = session.WithUser
	WithEvaluator      = session.WithEvaluator
	WithOptionProvider = session.WithOptionProvider
	WithKeyCache       = session.WithKeyCache
)

// Parse decodes a JSON or YAML form config.
func Parse(data []byte) (*FormConfig, error) {
	return formconfig.Parse(data, "input")
}

// LoadConfig reads a form config from disk.
func LoadConfig(path string) (*FormConfig, error) {
	return formconfig.LoadFile(path)
}

// NewSession builds a live form for cfg.
func NewSession(cfg *FormConfig, options ...SessionOption) (*Session, error) {
	return session.New(cfg, options...)
}

// ImportOpenAPI derives a form config from the request body schema of one
// OpenAPI operation.
func ImportOpenAPI(ctx context.Context, document []byte, operationID string) (*FormConfig, error) {
	return openapi.Import(ctx, document, operationID)
}
