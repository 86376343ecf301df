package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/internal/config"
	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/storage"
)

func (c *CLI) familiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the families in the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := c.persistentRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			families, err := repo.ListFamilies(ctx)
			if err != nil {
				return err
			}
			if len(families) == 0 {
				printInfo("No families yet")
				printNextStep("Import one", appName+" seed family.json")
				return nil
			}
			t := newTable("ID", "Name")
			for _, f := range families {
				t.Row(strconv.FormatInt(f.ID, 10), f.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func (c *CLI) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <seed.json>...",
		Short: "Import seed files into the configured storage",
		Long: `Import seed files into the configured storage.

Imports are idempotent: a family with the same name is reused and members,
marriages and child links that are already present are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := c.persistentRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()
			for _, path := range args {
				if err := c.seedFile(ctx, repo, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *CLI) seedFile(ctx context.Context, repo storage.Repository, path string) error {
	s, err := graph.ReadSeedFile(path)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	res, err := storage.Seed(ctx, repo, s, c.Logger)
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	prog.family("Seeded", s.Name, res.People, res.Marriages, res.Children)

	verb := "Created"
	if !res.Created {
		verb = "Updated"
	}
	printSuccess("%s family %s (id %d)", verb, StyleHighlight.Render(res.Family.Name), res.Family.ID)
	printDetail("%d people, %d marriages, %d children added; %d already present",
		res.People, res.Marriages, res.Children, res.Skipped)
	return nil
}

func (c *CLI) copyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <family-id>",
		Short: "Duplicate a family under the name <name>" + storage.CopySuffix,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid family id %q", args[0])
			}
			ctx := cmd.Context()
			repo, err := c.persistentRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			res, err := storage.CopyFamily(ctx, repo, id)
			if err != nil {
				return err
			}
			printSuccess("Copied to %s (id %d)", StyleHighlight.Render(res.Family.Name), res.Family.ID)
			printDetail("%d people, %d marriages, %d children", len(res.People), len(res.Marriages), len(res.Children))
			return nil
		},
	}
}

// persistentRepository opens the configured storage and refuses the
// memory backend, which would lose everything on exit.
func (c *CLI) persistentRepository(ctx context.Context) (storage.Repository, error) {
	if c.cfg.Storage.Backend == config.BackendMemory {
		return nil, fmt.Errorf("storage backend is %q: set storage.backend to postgres or mongo in %s", config.BackendMemory, c.configFile())
	}
	return openRepository(ctx, c.cfg, c.Logger)
}
