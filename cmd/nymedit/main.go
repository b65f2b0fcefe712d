package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"nymedit/internal/app"
	"nymedit/internal/config"
	"nymedit/internal/record"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an EditorApp. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.EditorApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewEditorApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func printTranscripts(transcripts []string) {
	for _, t := range transcripts {
		fmt.Print(t)
		if len(t) > 0 && t[len(t)-1] != '\n' {
			fmt.Println()
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "nymedit",
	Short: "Versioned lexicographic record editor",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitRemote string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(configInitRemote, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Remote:    %s\n", cfg.RemoteURL)
		fmt.Printf("Users Dir: %s\n", cfg.UsersDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Remote:    %s\n", cfg.RemoteURL)
		fmt.Printf("Users Dir: %s\n", cfg.UsersDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Users:     %d configured\n", len(cfg.Users))
		return nil
	},
}

// session commands

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Prepare a contributor's working copy for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		transcripts, err := a.Login(context.Background(), args[0])
		printTranscripts(transcripts)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		fmt.Printf("Working copy ready for %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Publish a contributor's branch upstream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		transcript, err := a.Logout(context.Background(), args[0])
		printTranscripts([]string{transcript})
		if err != nil {
			return fmt.Errorf("logout: %w", err)
		}

		fmt.Printf("Branch published for %s\n", args[0])
		return nil
	},
}

// add command

var addUser string

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Build, validate and commit a record",
}

var (
	cnfFields = map[string]*string{}

	addCnfCmd = &cobra.Command{
		Use:   "cnf",
		Short: "Add a name-concept entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit("AddConcept", func(a *app.EditorApp, ctx context.Context, f record.Fields) (*record.SubmitResult, error) {
				return a.AddConcept(ctx, addUser, f)
			}, scalarFields(cnfFields))
		},
	}
)

var (
	vnfNyms   []string
	vnfDim    bool
	vnfFields = map[string]*string{}

	addVnfCmd = &cobra.Command{
		Use:   "vnf",
		Short: "Add a name-variant entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := scalarFields(vnfFields)
			fields["nym"] = vnfNyms
			if vnfDim {
				fields["dim"] = []string{"on"}
			}
			return submit("AddVariant", func(a *app.EditorApp, ctx context.Context, f record.Fields) (*record.SubmitResult, error) {
				return a.AddVariant(ctx, addUser, f)
			}, fields)
		},
	}
)

var (
	bibFields = map[string]*string{}

	addBibCmd = &cobra.Command{
		Use:   "bib",
		Short: "Add a bibliography entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit("AddBibliography", func(a *app.EditorApp, ctx context.Context, f record.Fields) (*record.SubmitResult, error) {
				return a.AddBibliography(ctx, addUser, f)
			}, scalarFields(bibFields))
		},
	}
)

func scalarFields(flags map[string]*string) record.Fields {
	fields := record.Fields{}
	for name, val := range flags {
		fields[name] = []string{*val}
	}
	return fields
}

func submit(operation string, fn func(*app.EditorApp, context.Context, record.Fields) (*record.SubmitResult, error), fields record.Fields) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := fn(a, context.Background(), fields)
	if err != nil {
		return err
	}

	printTranscripts(res.Transcripts)
	fmt.Printf("Added %s (%s)\n", res.DisplayName, res.RelPath)
	return nil
}

// list commands

var listUser string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List identifiers in a working copy",
}

var listKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List bibliography citation keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return list("ListKeys", func(a *app.EditorApp, ctx context.Context) ([]string, error) {
			return a.BibKeys(ctx, listUser)
		})
	},
}

var listNymsCmd = &cobra.Command{
	Use:   "nyms",
	Short: "List concept identifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return list("ListNyms", func(a *app.EditorApp, ctx context.Context) ([]string, error) {
			return a.Nyms(ctx, listUser)
		})
	},
}

func list(operation string, fn func(*app.EditorApp, context.Context) ([]string, error)) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	lines, err := fn(a, context.Background())
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// changed command

var (
	changedUser  string
	changedSince string

	changedCmd = &cobra.Command{
		Use:   "changed <kind>",
		Short: "Report whether records of a kind were written since a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			since, err := time.Parse(time.RFC3339, changedSince)
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}

			a, err := newApp("Changed")
			if err != nil {
				return err
			}
			defer a.Close()

			changed, err := a.ChangedSince(changedUser, record.Kind(args[0]), since)
			if err != nil {
				return err
			}
			fmt.Println(changed)
			return nil
		},
	}
)

func stringField(cmd *cobra.Command, store map[string]*string, name, help string) {
	store[name] = cmd.Flags().String(name, "", help)
}

func init() {
	configCmd.AddCommand(configInitCmd, configListCmd)
	configInitCmd.Flags().StringVar(&configInitRemote, "remote", "", "shared repository URL")
	configInitCmd.MarkFlagRequired("remote")

	addCmd.PersistentFlags().StringVar(&addUser, "user", "", "contributor username")
	addCmd.MarkPersistentFlagRequired("user")

	stringField(addCnfCmd, cnfFields, "nym", "canonical name-concept identifier")
	stringField(addCnfCmd, cnfFields, "gen", "generation/classification tag")
	stringField(addCnfCmd, cnfFields, "etym", "etymology (may contain markup)")
	stringField(addCnfCmd, cnfFields, "usg", "usage note (may contain markup)")
	stringField(addCnfCmd, cnfFields, "def", "definition (may contain markup)")
	stringField(addCnfCmd, cnfFields, "lit", "literature note (may contain markup)")
	stringField(addCnfCmd, cnfFields, "note", "free note (may contain markup)")

	addVnfCmd.Flags().StringArrayVar(&vnfNyms, "nym", nil, "associated concept identifier (repeatable)")
	addVnfCmd.Flags().BoolVar(&vnfDim, "dim", false, "diminutive form")
	stringField(addVnfCmd, vnfFields, "name", "surface-form name")
	stringField(addVnfCmd, vnfFields, "gen", "generation/classification tag")
	stringField(addVnfCmd, vnfFields, "case", "grammatical case")
	stringField(addVnfCmd, vnfFields, "lang", "language")
	stringField(addVnfCmd, vnfFields, "place", "place")
	stringField(addVnfCmd, vnfFields, "date", "date")
	stringField(addVnfCmd, vnfFields, "key", "bibliography key")
	stringField(addVnfCmd, vnfFields, "loc", "location within the source")
	stringField(addVnfCmd, vnfFields, "note", "free note (may contain markup)")

	stringField(addBibCmd, bibFields, "key", "citation key")
	stringField(addBibCmd, bibFields, "entry", "pre-formed citation body (markup)")

	addCmd.AddCommand(addCnfCmd, addVnfCmd, addBibCmd)

	listCmd.PersistentFlags().StringVar(&listUser, "user", "", "contributor username")
	listCmd.MarkPersistentFlagRequired("user")
	listCmd.AddCommand(listKeysCmd, listNymsCmd)

	changedCmd.Flags().StringVar(&changedUser, "user", "", "contributor username")
	changedCmd.Flags().StringVar(&changedSince, "since", "", "RFC3339 timestamp")
	changedCmd.MarkFlagRequired("user")
	changedCmd.MarkFlagRequired("since")

	rootCmd.AddCommand(configCmd, loginCmd, logoutCmd, addCmd, listCmd, changedCmd)
}
