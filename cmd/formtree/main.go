package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	formtree "github.com/goliatone/go-formtree"
	"github.com/goliatone/go-formtree/internal/cliconfig"
	"github.com/goliatone/go-formtree/internal/prompt"
	"github.com/goliatone/go-formtree/pkg/access"
	"github.com/goliatone/go-formtree/pkg/formconfig"
	"github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/options"
	"github.com/goliatone/go-formtree/pkg/patch"
	"github.com/goliatone/go-formtree/pkg/session"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "formtree:", err)
		os.Exit(1)
	}
}

// report is the JSON document written after a run.
type report struct {
	Session  string                       `json:"session"`
	Form     string                       `json:"form"`
	Status   string                       `json:"status"`
	Value    map[string]any               `json:"value"`
	Access   map[string]session.Access    `json:"access"`
	Controls map[string]session.Access    `json:"controls"`
	Errors   map[string]map[string]string `json:"errors,omitempty"`
	Warnings []string                     `json:"warnings,omitempty"`
	Pruned   []string                     `json:"pruned,omitempty"`
	Actions  []string                     `json:"actions,omitempty"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("formtree", flag.ContinueOnError)
	fs.SetOutput(stderr)

	envFile := fs.String("env", "", "env file with FORMTREE_* defaults (.env when empty)")
	configPath := fs.String("config", "", "form config file (JSON or YAML)")
	bundled := fs.String("bundled", "", "id of a bundled form config")
	openapiPath := fs.String("openapi", "", "OpenAPI document to import the form from")
	operation := fs.String("operation", "", "operation id used with -openapi")
	listOps := fs.Bool("list-operations", false, "list the operations of -openapi and exit")
	recordPath := fs.String("record", "", "saved record (JSON) to patch into the form")
	status := fs.String("status", "", "workflow status")
	userID := fs.String("user", "", "acting user id")
	roles := fs.String("roles", "", "comma separated roles")
	permissions := fs.String("permissions", "", "comma separated permissions")
	interactive := fs.Bool("interactive", false, "prompt for every visible, editable field")
	prune := fs.Bool("prune", false, "clear hidden fields before writing the report")
	resolve := fs.Bool("resolve-options", false, "fetch dynamic option sources")
	output := fs.String("output", "", "output file (stdout if empty)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := cliconfig.Load(envFiles...)
	if err != nil {
		return err
	}
	override(&cfg.ConfigPath, *configPath)
	override(&cfg.OpenAPIPath, *openapiPath)
	override(&cfg.Operation, *operation)
	override(&cfg.RecordPath, *recordPath)
	override(&cfg.Status, *status)
	override(&cfg.UserID, *userID)
	override(&cfg.LogLevel, *logLevel)
	override(&cfg.LogFormat, *logFormat)
	if *roles != "" {
		cfg.Roles = splitList(*roles)
	}
	if *permissions != "" {
		cfg.Permissions = splitList(*permissions)
	}

	logger := cliconfig.NewLogger(cfg.LogLevel, cfg.LogFormat, stderr)

	if *listOps {
		raw, err := os.ReadFile(cfg.OpenAPIPath)
		if err != nil {
			return fmt.Errorf("read openapi: %w", err)
		}
		ids, err := openapi.Operations(ctx, raw)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, strings.Join(ids, "\n"))
		return err
	}

	form, err := loadForm(ctx, cfg, *bundled)
	if err != nil {
		return err
	}

	var headerOpts []options.HTTPOption
	headerOpts = append(headerOpts, options.WithTimeout(cfg.OptionsTimeout))
	for key, value := range cfg.OptionsHeaders {
		headerOpts = append(headerOpts, options.WithHeader(key, value))
	}

	s, err := formtree.NewSession(form,
		session.WithLogger(logger),
		session.WithStatus(cfg.Status),
		session.WithUser(access.User{ID: cfg.UserID, Roles: cfg.Roles, Permissions: cfg.Permissions}),
		session.WithOptionProvider(options.NewHTTPProvider(headerOpts...)),
	)
	if err != nil {
		return err
	}

	var warnings []patch.Warning
	if cfg.RecordPath != "" {
		raw, err := os.ReadFile(cfg.RecordPath)
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		if warnings, err = s.PatchJSON(raw); err != nil {
			return err
		}
	}

	if *resolve {
		resolveCtx, cancel := context.WithTimeout(ctx, cfg.OptionsTimeout+time.Second)
		err := s.ResolveOptions(resolveCtx)
		cancel()
		if err != nil {
			logger.Warn("some option sources failed", "error", err)
		}
	}

	if *interactive {
		if err := prompt.Fill(ctx, s, prompt.NewSurveyDriver()); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return errors.New("aborted")
			}
			return err
		}
	}

	out := report{
		Session: s.ID(),
		Form:    form.ID,
		Status:  s.Status(),
		Access:  s.AccessMap(),
	}
	if *prune {
		out.Pruned = s.PruneHidden()
	}
	out.Controls = s.ControlAccess()
	out.Errors = s.Validate()
	out.Value = s.Value()
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	for _, action := range s.Actions() {
		out.Actions = append(out.Actions, action.ID)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if *output != "" {
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("report written", "path", *output)
		return nil
	}
	_, err = stdout.Write(data)
	return err
}

func loadForm(ctx context.Context, cfg cliconfig.Config, bundled string) (*formconfig.FormConfig, error) {
	switch {
	case bundled != "":
		return formtree.BundledForm(bundled)
	case cfg.OpenAPIPath != "":
		if cfg.Operation == "" {
			return nil, errors.New("-operation is required with -openapi")
		}
		raw, err := os.ReadFile(cfg.OpenAPIPath)
		if err != nil {
			return nil, fmt.Errorf("read openapi: %w", err)
		}
		return openapi.Import(ctx, raw, cfg.Operation)
	case cfg.ConfigPath != "":
		return formtree.LoadConfig(cfg.ConfigPath)
	}
	return nil, errors.New("one of -config, -bundled or -openapi is required")
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
