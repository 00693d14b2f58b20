package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/udisondev/overworld/internal/db"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/overworld"
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("228")).
			MarginBottom(1)

	styleSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("34"))

	styleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(22)

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleShiny = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

var journalKinds = []journal.Kind{
	journal.KindSpawned,
	journal.KindDespawned,
	journal.KindShinyRevealed,
	journal.KindOutbreakScheduled,
	journal.KindOutbreakStarted,
	journal.KindOutbreakEnded,
	journal.KindPanicStarted,
	journal.KindPanicEnded,
}

type mapLine struct {
	snap    overworld.Snapshot
	current bool
}

type report struct {
	frames       int
	elapsed      time.Duration
	steps        int
	mapVisits    int
	interactions int
	hordes       int
	outcomes     map[model.Outcome]int
	maps         []mapLine
	kinds        map[journal.Kind]int
	shinySpawns  int
	outbreak     string
	persisted    int64
	dropped      int64
	journalOn    bool
}

func buildReport(sim *simulation, core *overworld.Core, mapIDs []model.MapID, mem *journal.Memory, writer *db.Writer) report {
	r := report{
		frames:       sim.frames,
		elapsed:      sim.clock.elapsed(),
		steps:        sim.player.steps,
		mapVisits:    sim.player.mapVisits,
		interactions: sim.player.interactions,
		hordes:       sim.player.hordes,
		outcomes:     sim.player.outcomes,
		kinds:        make(map[journal.Kind]int),
		outbreak:     core.Status().String(),
	}
	for _, id := range mapIDs {
		r.maps = append(r.maps, mapLine{snap: core.Snapshot(id), current: id == sim.player.mapID})
	}
	for _, e := range mem.Entries() {
		r.kinds[e.Kind]++
		if e.Kind == journal.KindSpawned && e.Shiny {
			r.shinySpawns++
		}
	}
	if writer != nil {
		r.journalOn = true
		r.persisted = writer.Written()
		r.dropped = writer.Dropped()
	}
	return r
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render(label), styleValue.Render(value))
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func printReport(w io.Writer, r report) {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Overworld encounter simulation"))
	b.WriteString("\n")

	b.WriteString(styleSection.Render("Run") + "\n")
	b.WriteString(row("frames", count(r.frames)) + "\n")
	b.WriteString(row("simulated time", r.elapsed.Round(time.Second).String()) + "\n")
	b.WriteString(row("player steps", count(r.steps)) + "\n")
	b.WriteString(row("map visits", count(r.mapVisits)) + "\n")
	b.WriteString("\n")

	b.WriteString(styleSection.Render("Encounters") + "\n")
	b.WriteString(row("spawned", count(r.kinds[journal.KindSpawned])) + "\n")
	b.WriteString(row("spawned shiny", styleShiny.Render(count(r.shinySpawns))) + "\n")
	b.WriteString(row("despawned", count(r.kinds[journal.KindDespawned])) + "\n")
	b.WriteString(row("interactions", fmt.Sprintf("%s (%s hordes)", count(r.interactions), count(r.hordes))) + "\n")
	for _, o := range outcomes {
		b.WriteString(row("  "+o.String(), count(r.outcomes[o])) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(styleSection.Render("Maps") + "\n")
	for _, m := range r.maps {
		label := fmt.Sprintf("map %d", m.snap.MapID)
		if m.current {
			label += " *"
		}
		value := fmt.Sprintf("%d/%d live", m.snap.Live, m.snap.Ceiling)
		if m.snap.Shiny > 0 {
			value += ", " + styleShiny.Render(fmt.Sprintf("%d shiny", m.snap.Shiny))
		}
		b.WriteString(row(label, value) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(styleSection.Render("Journal") + "\n")
	for _, k := range journalKinds {
		if r.kinds[k] == 0 {
			continue
		}
		b.WriteString(row(string(k), count(r.kinds[k])) + "\n")
	}
	if r.journalOn {
		b.WriteString(row("persisted", humanize.Comma(r.persisted)) + "\n")
		b.WriteString(row("dropped", humanize.Comma(r.dropped)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(styleSection.Render("Outbreak") + "\n")
	b.WriteString(styleValue.Render(r.outbreak))

	fmt.Fprintln(w, styleBox.Render(b.String()))
}
