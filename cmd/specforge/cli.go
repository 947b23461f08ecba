package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/specforge/internal/config"
	"github.com/hpungsan/specforge/internal/db"
	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/llm"
	"github.com/hpungsan/specforge/internal/ops"
	"github.com/hpungsan/specforge/internal/prompts"
	"github.com/hpungsan/specforge/internal/repair"
	"github.com/hpungsan/specforge/internal/strategy"
)

// maxStdinBytes caps piped input for create and repair.
const maxStdinBytes = 1 << 20

// appEnv carries what the commands need. The generator is built lazily so
// read-only commands work without provider credentials.
type appEnv struct {
	db           *sql.DB
	cfg          *config.Config
	logger       *zap.Logger
	prompts      *prompts.Set
	newGenerator func(ctx context.Context) (llm.Generator, error)
}

func (e *appEnv) repo() *db.Repository {
	return db.NewRepository(e.db)
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "specforge",
		Usage:   "Project plans from free text",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(env),
			planCmd(env, strategy.NamePredict, "Append generated tasks to a saved project"),
			planCmd(env, strategy.NameOptimize, "Replace the tasks of a saved project with a generated set"),
			showCmd(env),
			listCmd(env),
			exportCmd(env),
			deleteCmd(env),
			repairCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

var responseFileFlag = &cli.StringFlag{
	Name:  "response-file",
	Usage: "Use the contents of this file as the generator response instead of calling a provider",
}

// generator returns the replay generator when --response-file is set and the
// configured provider otherwise.
func (e *appEnv) generator(c *cli.Context) (llm.Generator, error) {
	if path := c.String("response-file"); path != "" {
		return llm.LoadStatic(path)
	}
	gen, err := e.newGenerator(c.Context)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return gen, nil
}

func (e *appEnv) runPlan(c *cli.Context, input ops.PlanInput) error {
	gen, err := e.generator(c)
	if err != nil {
		return outputError(err)
	}

	repo := e.repo()
	factory := strategy.NewFactory(strategy.Deps{
		Repo:                repo,
		Generator:           gen,
		Prompts:             e.prompts,
		Logger:              e.logger,
		DescriptionMaxChars: e.cfg.DescriptionMaxChars,
	})

	result, err := ops.Plan(c.Context, factory, repo, input)
	if err != nil {
		return outputError(err)
	}
	return outputJSON(result)
}

// createCmd creates the create command.
func createCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Generate and save new projects (reads the request from stdin or arguments)",
		ArgsUsage: "[request...]",
		Flags:     []cli.Flag{responseFileFlag},
		Action: func(c *cli.Context) error {
			userInput := strings.Join(c.Args().Slice(), " ")
			if userInput == "" {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("request must be given as arguments or piped via stdin"))
				}
				text, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				userInput = text
			}

			return env.runPlan(c, ops.PlanInput{
				Strategy:  strategy.NameCreate,
				UserInput: userInput,
			})
		},
	}
}

// planCmd creates the predict and optimize commands.
func planCmd(env *appEnv, name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<project-id>",
		Flags:     []cli.Flag{responseFileFlag},
		Action: func(c *cli.Context) error {
			return env.runPlan(c, ops.PlanInput{
				Strategy:  name,
				ProjectID: c.Args().First(),
			})
		},
	}
}

// showCmd creates the show command.
func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a project and its tasks",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.FormatJSON, Usage: "Output format: json|markdown|html"},
		},
		Action: func(c *cli.Context) error {
			project, err := ops.Fetch(c.Context, env.repo(), ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			format, err := ops.ParseFormat(c.String("format"))
			if err != nil {
				return outputError(err)
			}
			if format == ops.FormatJSON {
				return outputJSON(project)
			}

			content, err := ops.Render(project, format)
			if err != nil {
				return outputError(err)
			}
			_, err = os.Stdout.Write(content)
			return err
		},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List saved projects, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum projects to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Number of projects to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.repo(), ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a project to a markdown, HTML or JSON file",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: markdown|html|json (default markdown)"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env.repo(), env.cfg, ops.ExportInput{
				ID:     c.Args().First(),
				Format: c.String("format"),
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a project and its tasks",
		ArgsUsage: "<project-id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, env.repo(), ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// repairCmd creates the repair command.
func repairCmd() *cli.Command {
	return &cli.Command{
		Name:  "repair",
		Usage: "Repair JSON-like text from stdin and print strict JSON",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "raw", Usage: "Print the cleaned text without reformatting"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("text must be piped via stdin"))
			}
			text, err := readStdin(maxStdinBytes)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			cleaned, err := repair.Sanitize(text)
			if err != nil {
				return outputError(err)
			}
			value, err := repair.Parse(cleaned)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("raw") {
				_, err = fmt.Fprintln(os.Stdout, cleaned)
				return err
			}
			return outputJSON(value)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if fErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", fErr.Code, fErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
