package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ger/internal/model"
)

var (
	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	labelStyle = lipgloss.NewStyle().Faint(true)
)

type plainRenderer struct {
	w io.Writer
}

func (r *plainRenderer) Render(v any) error {
	switch val := v.(type) {
	case *model.ChangeDetail:
		r.changeDetail(val)
	case []model.ChangeInfo:
		r.changeList(val)
	case []model.ProjectInfo:
		for _, p := range val {
			fmt.Fprintf(r.w, "%s", boldStyle.Render(p.Name))
			if p.State != "" && p.State != "ACTIVE" {
				fmt.Fprintf(r.w, " %s", dimStyle.Render("["+p.State+"]"))
			}
			if p.Description != "" {
				fmt.Fprintf(r.w, " %s", dimStyle.Render("— "+firstLine(p.Description)))
			}
			fmt.Fprintln(r.w)
		}
	case []model.GroupInfo:
		for _, g := range val {
			fmt.Fprintf(r.w, "%s", boldStyle.Render(g.Name))
			if g.Description != "" {
				fmt.Fprintf(r.w, " %s", dimStyle.Render("— "+firstLine(g.Description)))
			}
			fmt.Fprintln(r.w)
		}
	case *model.GroupInfo:
		r.group(val)
	case []model.FileInfo:
		r.fileList(val)
	case *model.DiffInfo:
		r.diff(val)
	case []model.AccountInfo:
		for _, a := range val {
			fmt.Fprintln(r.w, formatAccount(&a))
		}
	case model.ActionResult:
		if val.Status == "success" {
			fmt.Fprintln(r.w, okStyle.Render("✓")+" "+val.Message)
		} else {
			fmt.Fprintln(r.w, errStyle.Render("✗")+" "+val.Message)
		}
	case model.ReviewerReport:
		for _, res := range val.Results {
			if res.OK {
				fmt.Fprintf(r.w, "%s %s\n", okStyle.Render("✓"), res.Reviewer)
			} else {
				fmt.Fprintf(r.w, "%s %s: %s\n", errStyle.Render("✗"), res.Reviewer, res.Error)
			}
		}
		fmt.Fprintln(r.w, dimStyle.Render("status: "+val.Status))
	case model.BuildStatusResult:
		fmt.Fprintln(r.w, formatBuildState(val.State))
	case string:
		fmt.Fprintln(r.w, val)
	case []string:
		for _, s := range val {
			fmt.Fprintln(r.w, s)
		}
	default:
		// Anything without a bespoke layout falls back to JSON.
		return (&jsonRenderer{w: r.w}).Render(v)
	}
	return nil
}

func (r *plainRenderer) changeList(changes []model.ChangeInfo) {
	for _, c := range changes {
		fmt.Fprintf(r.w, "%s %s %s\n",
			boldStyle.Render(fmt.Sprintf("%d", c.Number)),
			formatStatus(c.Status),
			c.Subject)
		meta := []string{c.Project, c.Branch}
		if c.Owner != nil {
			meta = append(meta, formatAccount(c.Owner))
		}
		if c.Topic != "" {
			meta = append(meta, "topic:"+c.Topic)
		}
		fmt.Fprintf(r.w, "  %s\n", dimStyle.Render(strings.Join(meta, " · ")))
	}
}

func (r *plainRenderer) changeDetail(d *model.ChangeDetail) {
	c := d.Change
	fmt.Fprintln(r.w, headStyle.Render(fmt.Sprintf("Change %d: %s", c.Number, c.Subject)))
	row := func(name, value string) {
		if value != "" {
			fmt.Fprintf(r.w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", name)), value)
		}
	}
	row("Status", formatStatus(c.Status))
	row("Project", c.Project)
	row("Branch", c.Branch)
	row("Topic", c.Topic)
	if c.Owner != nil {
		row("Owner", formatAccount(c.Owner))
	}
	row("Change-Id", c.ChangeID)
	row("Updated", c.Updated)
	if c.WorkInProgress {
		row("WIP", warnStyle.Render("yes"))
	}
	if c.Submittable {
		row("Submittable", okStyle.Render("yes"))
	}
	if d.BuildState != "" {
		row("Build", formatBuildState(d.BuildState))
	}
	for name, label := range c.Labels {
		switch {
		case label.Rejected != nil:
			row(name, errStyle.Render("-1 "+formatAccount(label.Rejected)))
		case label.Approved != nil:
			row(name, okStyle.Render("+ "+formatAccount(label.Approved)))
		}
	}
	if len(d.Messages) > 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, headStyle.Render("Messages"))
		for _, m := range d.Messages {
			author := ""
			if m.Author != nil {
				author = formatAccount(m.Author)
			}
			fmt.Fprintf(r.w, "%s\n%s\n", dimStyle.Render(m.Date+" "+author), indent(m.Message))
		}
	}
}

func (r *plainRenderer) fileList(files []model.FileInfo) {
	for _, f := range files {
		marker := f.Status
		if marker == "" {
			marker = "M"
		}
		line := fmt.Sprintf("%s %s", boldStyle.Render(marker), f.Path)
		if f.Binary {
			line += " " + dimStyle.Render("(binary)")
		} else if f.LinesInserted > 0 || f.LinesDeleted > 0 {
			line += fmt.Sprintf(" %s %s",
				okStyle.Render(fmt.Sprintf("+%d", f.LinesInserted)),
				errStyle.Render(fmt.Sprintf("-%d", f.LinesDeleted)))
		}
		fmt.Fprintln(r.w, line)
	}
}

func (r *plainRenderer) diff(d *model.DiffInfo) {
	if d.Binary {
		fmt.Fprintln(r.w, dimStyle.Render("binary file"))
		return
	}
	for _, hunk := range d.Content {
		for _, l := range hunk.AB {
			fmt.Fprintln(r.w, " "+l)
		}
		for _, l := range hunk.A {
			fmt.Fprintln(r.w, errStyle.Render("-"+l))
		}
		for _, l := range hunk.B {
			fmt.Fprintln(r.w, okStyle.Render("+"+l))
		}
	}
}

func (r *plainRenderer) group(g *model.GroupInfo) {
	fmt.Fprintln(r.w, headStyle.Render(g.Name))
	if g.Description != "" {
		fmt.Fprintln(r.w, g.Description)
	}
	if g.Owner != "" {
		fmt.Fprintf(r.w, "%s %s\n", labelStyle.Render("owner:"), g.Owner)
	}
	for _, m := range g.Members {
		fmt.Fprintf(r.w, "  %s\n", formatAccount(&m))
	}
}

func formatStatus(status string) string {
	switch status {
	case "NEW":
		return okStyle.Render(status)
	case "MERGED":
		return dimStyle.Render(status)
	case "ABANDONED":
		return errStyle.Render(status)
	default:
		return status
	}
}

func formatBuildState(state string) string {
	switch state {
	case "success":
		return okStyle.Render(state)
	case "failure":
		return errStyle.Render(state)
	case "running", "pending":
		return warnStyle.Render(state)
	default:
		return dimStyle.Render(state)
	}
}

func formatAccount(a *model.AccountInfo) string {
	switch {
	case a.Name != "" && a.Email != "":
		return fmt.Sprintf("%s <%s>", a.Name, a.Email)
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	default:
		return a.Username
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
