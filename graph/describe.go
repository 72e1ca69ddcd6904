package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Describe writes the plan as a table: one row per step with the slots the
// pass reads and writes.
func (c *CompiledGraph) Describe(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Step", "Pass", "Reads", "Writes"})
	for step, id := range c.order {
		var reads, writes []string
		for _, d := range c.decls[id] {
			if d.Usage.Reads() {
				reads = append(reads, string(d.Resource))
			}
			if d.Usage.Writes() {
				writes = append(writes, string(d.Resource))
			}
		}
		table.Append([]string{
			fmt.Sprintf("%d", step),
			string(id),
			strings.Join(reads, ", "),
			strings.Join(writes, ", "),
		})
	}
	table.SetFooter([]string{"", "", "Passes", fmt.Sprintf("%d", len(c.order))})
	table.Render()
}

// String returns the plan as an arrow-separated pass list.
func (c *CompiledGraph) String() string {
	ids := make([]string, len(c.order))
	for i, id := range c.order {
		ids[i] = string(id)
	}
	return strings.Join(ids, " -> ")
}
