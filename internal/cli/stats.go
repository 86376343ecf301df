package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stamboom/pkg/family"
)

func (c *CLI) statsCommand() *cobra.Command {
	var src source
	cmd := &cobra.Command{
		Use:   "stats [seed.json]",
		Short: "Show family statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), &src, args)
		},
	}
	src.addFlags(cmd)
	return cmd
}

func (c *CLI) runStats(ctx context.Context, src *source, args []string) error {
	f, ds, err := src.load(ctx, c, args)
	if err != nil {
		return err
	}
	s := family.Summarize(ds, time.Now())

	fmt.Fprintln(uiOut, StyleTitle.Render(dash(f.Name)))
	printKeyValue("People", StyleNumber.Render(strconv.Itoa(s.Members)))
	printKeyValue("Living", StyleNumber.Render(strconv.Itoa(s.Living)))
	printKeyValue("Marriages", StyleNumber.Render(strconv.Itoa(s.Marriages)))
	printKeyValue("Children", StyleNumber.Render(strconv.Itoa(s.ChildLinks)))
	printKeyValue("Unlinked", StyleNumber.Render(strconv.Itoa(s.Disconnected)))
	if s.Oldest != nil {
		printKeyValue("Oldest", rankedString(s.Oldest))
	}
	if s.Youngest != nil {
		printKeyValue("Youngest", rankedString(s.Youngest))
	}
	if s.Disconnected > 0 {
		printNewline()
		printWarning("%d people are not linked to any marriage", s.Disconnected)
	}
	return nil
}

func rankedString(r *family.Ranked) string {
	return fmt.Sprintf("%s %s", r.Person.FullName(), StyleDim.Render(fmt.Sprintf("(%d)", r.Age)))
}
