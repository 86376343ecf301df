package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/pkg/family"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/tree"
)

func (c *CLI) searchCommand() *cobra.Command {
	var (
		src   source
		query string
		opts  pipeline.Options
	)
	cmd := &cobra.Command{
		Use:   "search [seed.json]",
		Short: "Find people and where they sit in the tree",
		Long: `Find people by first name, last name or comments.

With --query the matches are printed as a table. Without it an interactive
list opens; type to filter and press enter to pick a person. Either way the
result shows the centre of the person's card in the laid-out tree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), &src, args, query, opts)
		},
	}
	src.addFlags(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "search text; omit for the interactive list")
	layoutFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runSearch(ctx context.Context, src *source, args []string, query string, opts pipeline.Options) error {
	_, ds, err := src.load(ctx, c, args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()
	positioned, err := runner.Run(ctx, ds, c.layoutOptions(opts))
	if err != nil {
		return err
	}
	centres := memberCentres(positioned)

	if query != "" {
		matches := family.Search(ds.People, query)
		if len(matches) == 0 {
			printInfo("No one matches %q", query)
			return nil
		}
		t := newTable("ID", "Name", "Born", "Birthplace", "Centre")
		for _, p := range matches {
			t.Row(strconv.FormatInt(p.ID, 10), p.FullName(), dash(family.FormatDate(p.BirthDate)), dash(birthplace(p)), centreString(centres, p.ID))
		}
		fmt.Fprintln(uiOut, t.Render())
		return nil
	}

	prog := tea.NewProgram(NewPersonListModel(ds.People, ""), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := prog.Run()
	if err != nil {
		return err
	}
	m, ok := final.(PersonListModel)
	if !ok || m.Selected == nil {
		return nil
	}
	p := m.Selected
	printSuccess("%s", p.FullName())
	printKeyValue("ID", strconv.FormatInt(p.ID, 10))
	printKeyValue("Born", dash(family.FormatDate(p.BirthDate)))
	printKeyValue("Birthplace", dash(birthplace(*p)))
	if p.DeathDate != "" {
		printKeyValue("Died", family.FormatDate(p.DeathDate))
	}
	printKeyValue("Centre", centreString(centres, p.ID))
	return nil
}

// memberCentres maps person ids to the centre of their card.
func memberCentres(g tree.Graph) map[int64]tree.Position {
	out := make(map[int64]tree.Position)
	for _, n := range g.Members() {
		if n.Person == nil || n.Placeholder {
			continue
		}
		if _, dup := out[n.Person.ID]; !dup {
			out[n.Person.ID] = n.Center()
		}
	}
	return out
}

func centreString(centres map[int64]tree.Position, id int64) string {
	c, ok := centres[id]
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.0f, %.0f", c.X, c.Y)
}
