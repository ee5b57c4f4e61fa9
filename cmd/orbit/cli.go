package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/orbit/internal/command"
	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/errors"
	"github.com/hpungsan/orbit/internal/ops"
	"github.com/hpungsan/orbit/internal/web"
)

// CommandOutput is what `orbit run` prints.
type CommandOutput struct {
	ops.Result
	CanUndo bool `json:"can_undo"`
}

// TokensOutput is what `orbit tokens` prints.
type TokensOutput struct {
	Tokens []command.Token `json:"tokens"`
}

// newCLIApp creates the CLI application with all commands.
// exec and cfg may be nil when only help or version output is needed.
func newCLIApp(exec *ops.Executor, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "orbit",
		Usage:   "Personal relationship log driven by a one-line command language",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Overlay config file merged over ~/.orbit/config.json"},
		},
		Commands: []*cli.Command{
			runCmd(exec),
			shellCmd(exec),
			tokensCmd(),
			contactCmd(exec, cfg),
			constellationCmd(exec),
			tagsCmd(exec),
			timelineCmd(exec),
			purgeCmd(exec),
			uiCmd(exec, cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runCmd creates the run command.
func runCmd(exec *ops.Executor) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute one command line, e.g. orbit run '@Sarah !Coffee #work ^yesterday'",
		ArgsUsage: "<line>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force-convert", Usage: "Convert a single-value artifact to a list when appending"},
		},
		Action: func(c *cli.Context) error {
			line := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(line) == "" {
				return outputError(errors.NewInvalidRequest("command line is required"))
			}

			cmd := command.Parse(line)
			if a, ok := cmd.(command.AppendArtifact); ok && c.Bool("force-convert") {
				a.ForceConvert = true
				cmd = a
			}

			res, sess := exec.Execute(c.Context, ops.Session{}, cmd)
			if err := outputJSON(c, CommandOutput{Result: res, CanUndo: sess.CanUndo()}); err != nil {
				return err
			}
			if !res.Success {
				if res.RequiresConversionPrompt != nil {
					return cli.Exit(res.Message+" (rerun with --force-convert)", 1)
				}
				return cli.Exit(res.Message, 1)
			}
			return nil
		},
	}
}

// shellCmd creates the interactive shell command.
func shellCmd(exec *ops.Executor) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Read command lines from stdin, keeping one session (and its undo slot)",
		Action: func(c *cli.Context) error {
			sh := &shell{
				exec: exec,
				in:   c.App.Reader,
				out:  c.App.Writer,
			}
			return sh.run(c.Context)
		},
	}
}

// tokensCmd creates the tokens command.
func tokensCmd() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the highlighting tokens of a command line",
		ArgsUsage: "<line>",
		Action: func(c *cli.Context) error {
			tokens := command.Tokenize(strings.Join(c.Args().Slice(), " "))
			if tokens == nil {
				tokens = []command.Token{}
			}
			return outputJSON(c, TokensOutput{Tokens: tokens})
		},
	}
}

// contactCmd creates the contact command and its subcommands.
func contactCmd(exec *ops.Executor, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "contact",
		Usage: "Manage contacts",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a contact",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "orbit", Aliases: []string{"o"}, Usage: "Target orbit 0-4 (defaults to config default_orbit)"},
					&cli.StringFlag{Name: "notes", Usage: "Free-form markdown notes"},
				},
				Action: func(c *cli.Context) error {
					input := ops.CreateContactInput{
						Name:  strings.Join(c.Args().Slice(), " "),
						Notes: c.String("notes"),
					}
					if c.IsSet("orbit") {
						orbit := c.Int("orbit")
						input.Orbit = &orbit
					}

					out, err := exec.CreateContact(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "show",
				Usage:     "Show a contact with artifacts, recent interactions and drift",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Contact ID"},
					&cli.BoolFlag{Name: "archived", Usage: "Allow archived contacts"},
					&cli.IntFlag{Name: "recent", Value: 10, Usage: "Number of recent interactions"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.FetchContact(c.Context, exec.DB(), ops.FetchContactInput{
						ID:              c.String("id"),
						Name:            strings.Join(c.Args().Slice(), " "),
						IncludeArchived: c.Bool("archived"),
						RecentLimit:     c.Int("recent"),
						CadenceDays:     cadence(cfg),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "list",
				Usage: "List contacts ordered by name",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "archived", Usage: "Include archived contacts"},
					&cli.BoolFlag{Name: "drifting", Usage: "Only contacts past their cadence"},
					&cli.IntFlag{Name: "orbit", Aliases: []string{"o"}, Usage: "Filter by target orbit"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Max results"},
					&cli.IntFlag{Name: "offset", Value: 0, Usage: "Pagination offset"},
				},
				Action: func(c *cli.Context) error {
					input := ops.ListContactsInput{
						IncludeArchived: c.Bool("archived"),
						DriftingOnly:    c.Bool("drifting"),
						Limit:           c.Int("limit"),
						Offset:          c.Int("offset"),
						CadenceDays:     cadence(cfg),
					}
					if c.IsSet("orbit") {
						orbit := c.Int("orbit")
						input.Orbit = &orbit
					}

					out, err := ops.ListContacts(c.Context, exec.DB(), input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "edit",
				Usage:     "Rename a contact or change its notes or orbit",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Contact ID"},
					&cli.StringFlag{Name: "rename", Usage: "New display name"},
					&cli.StringFlag{Name: "notes", Usage: "Replace notes"},
					&cli.IntFlag{Name: "orbit", Aliases: []string{"o"}, Usage: "New target orbit"},
				},
				Action: func(c *cli.Context) error {
					input := ops.UpdateContactInput{
						ID:   c.String("id"),
						Name: strings.Join(c.Args().Slice(), " "),
					}
					if c.IsSet("rename") {
						v := c.String("rename")
						input.NewName = &v
					}
					if c.IsSet("notes") {
						v := c.String("notes")
						input.Notes = &v
					}
					if c.IsSet("orbit") {
						v := c.Int("orbit")
						input.Orbit = &v
					}

					out, err := exec.UpdateContact(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a contact and its whole history",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Contact ID"},
				},
				Action: func(c *cli.Context) error {
					out, err := exec.DeleteContact(c.Context, c.String("id"), strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// constellationCmd creates the constellation command and its subcommands.
func constellationCmd(exec *ops.Executor) *cli.Command {
	membership := func(c *cli.Context) (ops.MembershipInput, error) {
		if c.NArg() != 2 {
			return ops.MembershipInput{}, errors.NewInvalidRequest("expected <constellation> <contact>")
		}
		return ops.MembershipInput{
			ConstellationName: c.Args().Get(0),
			ContactName:       c.Args().Get(1),
		}, nil
	}

	return &cli.Command{
		Name:  "constellation",
		Usage: "Manage constellations (named groups of contacts)",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a constellation",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					out, err := exec.CreateConstellation(c.Context, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a constellation (members are kept)",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Constellation ID"},
				},
				Action: func(c *cli.Context) error {
					out, err := exec.DeleteConstellation(c.Context, c.String("id"), strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "join",
				Usage:     "Add a contact to a constellation",
				ArgsUsage: "<constellation> <contact>",
				Action: func(c *cli.Context) error {
					input, err := membership(c)
					if err != nil {
						return outputError(err)
					}
					out, err := exec.AddMember(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "leave",
				Usage:     "Remove a contact from a constellation",
				ArgsUsage: "<constellation> <contact>",
				Action: func(c *cli.Context) error {
					input, err := membership(c)
					if err != nil {
						return outputError(err)
					}
					out, err := exec.RemoveMember(c.Context, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "list",
				Usage: "List constellations with their members",
				Action: func(c *cli.Context) error {
					out, err := ops.ListConstellations(c.Context, exec.DB())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// tagsCmd creates the tags command.
func tagsCmd(exec *ops.Executor) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List known tags (autocomplete catalog)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Only tags starting with prefix"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Max results"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.ListTags(c.Context, exec.DB(), ops.ListTagsInput{
				Prefix: c.String("prefix"),
				Limit:  c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// timelineCmd creates the timeline command.
func timelineCmd(exec *ops.Executor) *cli.Command {
	return &cli.Command{
		Name:  "timeline",
		Usage: "Most recent interactions across all contacts",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Max results"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Timeline(c.Context, exec.DB(), c.Int("limit"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(exec *ops.Executor) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete undone (soft-deleted) interactions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "contact", Usage: "Only this contact's interactions"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{ContactName: c.String("contact")}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			out, err := exec.PurgeInteractions(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// uiCmd creates the web UI command.
func uiCmd(exec *ops.Executor, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the web viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 4620, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(exec, cfg, logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to the app's writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	oErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", oErr.Code, oErr.Message), 1)
}

// cadence returns the configured cadence table, or nil for the defaults.
func cadence(cfg *config.Config) []int {
	if cfg == nil {
		return nil
	}
	return cfg.CadenceDays
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}

