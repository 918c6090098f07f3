package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ESVigan/auto-renamer/internal/config"
	"github.com/ESVigan/auto-renamer/internal/errors"
	"github.com/ESVigan/auto-renamer/internal/ops"
	"github.com/ESVigan/auto-renamer/internal/update"
	"github.com/ESVigan/auto-renamer/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "renamer",
		Usage:   "Batch file renamer for media deliverables",
		Version: Version,
		Commands: []*cli.Command{
			codesCmd(db),
			rulesCmd(db),
			previewCmd(db, cfg),
			runCmd(db, cfg),
			undoCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			checkUpdateCmd(cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// codesCmd groups the project code table commands.
func codesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "codes",
		Usage: "Manage the project code table",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a project code (matched in insertion order)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Required: true, Usage: "Literal filename prefix"},
					&cli.StringFlag{Name: "full-name", Aliases: []string{"f"}, Required: true, Usage: "Project name used in generated filenames"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.StoreCode(db, ops.StoreCodeInput{
						Code:     c.String("code"),
						FullName: c.String("full-name"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List project codes in match order",
				Action: func(c *cli.Context) error {
					output, err := ops.ListCodes(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Edit a project code in place (flags not given are left unchanged)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Usage: "New filename prefix"},
					&cli.StringFlag{Name: "full-name", Aliases: []string{"f"}, Usage: "New project name"},
					&cli.IntFlag{Name: "position", Usage: "New match-order position"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("id argument is required"))
					}
					input := ops.UpdateCodeInput{ID: c.Args().First()}
					if c.IsSet("code") {
						input.Code = stringPtr(c.String("code"))
					}
					if c.IsSet("full-name") {
						input.FullName = stringPtr(c.String("full-name"))
					}
					if c.IsSet("position") {
						input.Position = intPtr(c.Int("position"))
					}
					output, err := ops.UpdateCode(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a project code",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("id argument is required"))
					}
					output, err := ops.DeleteCode(db, ops.DeleteCodeInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// rulesCmd groups the diff rule table commands.
func rulesCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Manage the diff rule table",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a diff rule (may be stored incomplete)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "diff-num", Aliases: []string{"d"}, Required: true, Usage: "Numeric diff key (matched as a string)"},
					&cli.StringFlag{Name: "full-name", Aliases: []string{"f"}, Usage: "Variant full name"},
					&cli.StringFlag{Name: "abbr", Aliases: []string{"a"}, Usage: "Variant abbreviation"},
					&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Variant language tag"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.StoreRule(db, ops.StoreRuleInput{
						DiffNum:  c.String("diff-num"),
						FullName: c.String("full-name"),
						Abbr:     c.String("abbr"),
						Lang:     c.String("lang"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List diff rules in match order",
				Action: func(c *cli.Context) error {
					output, err := ops.ListRules(db)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "update",
				Usage:     "Edit a diff rule in place (flags not given are left unchanged)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "diff-num", Aliases: []string{"d"}, Usage: "New diff key"},
					&cli.StringFlag{Name: "full-name", Aliases: []string{"f"}, Usage: "New variant full name"},
					&cli.StringFlag{Name: "abbr", Aliases: []string{"a"}, Usage: "New abbreviation"},
					&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "New language tag"},
					&cli.IntFlag{Name: "position", Usage: "New match-order position"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("id argument is required"))
					}
					input := ops.UpdateRuleInput{ID: c.Args().First()}
					if c.IsSet("diff-num") {
						input.DiffNum = stringPtr(c.String("diff-num"))
					}
					if c.IsSet("full-name") {
						input.FullName = stringPtr(c.String("full-name"))
					}
					if c.IsSet("abbr") {
						input.Abbr = stringPtr(c.String("abbr"))
					}
					if c.IsSet("lang") {
						input.Lang = stringPtr(c.String("lang"))
					}
					if c.IsSet("position") {
						input.Position = intPtr(c.Int("position"))
					}
					output, err := ops.UpdateRule(db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a diff rule",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("id argument is required"))
					}
					output, err := ops.DeleteRule(db, ops.DeleteRuleInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "suggest",
				Usage: "List previously used values for a rule field",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Required: true, Usage: "One of: full_name, abbr, lang"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.Suggest(db, ops.SuggestInput{Field: c.String("field")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// previewCmd creates the preview command.
func previewCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Resolve new names for a batch without renaming (paths as args or one per stdin line)",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Date prefix (default: today, YYMMDD)"},
		},
		Action: func(c *cli.Context) error {
			paths, err := gatherPaths(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Preview(db, cfg, ops.PreviewInput{
				Date:  c.String("date"),
				Paths: paths,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// runCmd creates the run command.
func runCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Rename every ready file in the batch (replaces the previous undo generation)",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Date prefix (default: today, YYMMDD)"},
		},
		Action: func(c *cli.Context) error {
			paths, err := gatherPaths(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Execute(db, cfg, ops.ExecuteInput{
				Date:  c.String("date"),
				Paths: paths,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// undoCmd creates the undo command.
func undoCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "undo",
		Usage: "Reverse the most recent run, newest rename first",
		Action: func(c *cli.Context) error {
			output, err := ops.Undo(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the tables to a profile file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Profile path (default: ~/.renamer/profiles/<name>-<timestamp>.json)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Profile name used in the default filename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportProfile(db, cfg, ops.ExportProfileInput{
				Path: c.String("path"),
				Name: c.String("name"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a profile file into the tables",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Profile file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ImportProfile(db, cfg, ops.ImportProfileInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// checkUpdateCmd creates the check-update command.
func checkUpdateCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "check-update",
		Usage: "Check GitHub for a newer release",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "apply", Usage: "Download the release asset and replace this binary (keeps a .bak)"},
		},
		Action: func(c *cli.Context) error {
			client := update.NewClient(cfg)
			result, err := update.Check(c.Context, client, Version)
			if err != nil {
				return outputError(err)
			}

			if !c.Bool("apply") || !result.UpdateAvailable {
				return outputJSON(result)
			}

			exe, err := os.Executable()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			applied, err := client.Apply(c.Context, &result.Release, exe)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(applied)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8780, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// gatherPaths collects batch paths from args, or from stdin when piped.
func gatherPaths(c *cli.Context) ([]string, error) {
	if c.NArg() > 0 {
		return c.Args().Slice(), nil
	}
	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("pass file paths as arguments or pipe them via stdin")
	}
	text, err := readStdin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rErr, ok := err.(*errors.RenamerError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
