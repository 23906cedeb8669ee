package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noteStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("108"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	title := "Favorites"
	if m.flag.active.Load() {
		title = "Favorites · PREVIEW"
	}
	b.WriteString(titleStyle.Render(title))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render(fmt.Sprintf("page %d/%d · %d total",
		m.page+1, m.maxPage()+1, len(m.records))))

	page := m.pageRecords()
	if len(page) == 0 {
		b.WriteString(dimStyle.Render("no favorites yet") + "\n")
	}
	for i, rec := range page {
		line := fmt.Sprintf("[%s] %s (%s)", rec.MessageID, rec.Sender, rec.Role)
		if msg, ok := m.resolve(rec); ok {
			if msg.SendDate != 0 {
				line += dimStyle.Render(" · " + humanize.Time(time.Unix(msg.SendDate, 0)))
			}
		} else {
			line += warnStyle.Render(" · unavailable")
		}
		if i == m.cursor && m.mode == modeList {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if rec.Note != "" {
			b.WriteString("    " + noteStyle.Render(rec.Note) + "\n")
		}
	}

	b.WriteString("\n")
	switch m.mode {
	case modeNote:
		b.WriteString("note (enter saves, esc cancels):\n")
		b.WriteString(m.noteArea.View() + "\n")
	case modeConfirmDelete:
		b.WriteString(warnStyle.Render("delete this favorite? (y/n)") + "\n")
	case modeConfirmPrune:
		b.WriteString(warnStyle.Render("remove all favorites whose message is gone? (y/n)") + "\n")
	default:
		if m.flag.active.Load() {
			b.WriteString(dimStyle.Render("r return · q quit") + "\n")
		} else {
			b.WriteString(dimStyle.Render("↑↓ select · ←→ page · e note · d delete · P prune · c copy · t/l/w export · v preview · q quit") + "\n")
		}
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	return b.String()
}
