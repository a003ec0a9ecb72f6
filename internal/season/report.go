package season

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// PrintTable writes rows as an aligned league table.
func PrintTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "#\tTeam\tP\tW\tD\tL\tGF\tGA\tGD\tPts\t")
	for i, r := range rows {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t\n",
			i+1, r.Team, r.Played, r.Wins, r.Draws, r.Losses,
			r.GoalsFor, r.GoalsAgainst, r.GoalsFor-r.GoalsAgainst, r.Points)
	}
	return tw.Flush()
}

// PrintStats writes a one-paragraph run summary.
func PrintStats(w io.Writer, s *Stats) {
	_, _ = fmt.Fprintf(w, "\n%d matchdays, %d fixtures simulated, %d failed, %d narratives, %d bans in %s\n",
		s.Matchdays, s.Simulated, s.Failed, s.Narratives, s.Bans, s.Duration.Round(time.Millisecond))
}
