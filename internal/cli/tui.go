package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/taskdag/pkg/command"
	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/guard"
	"github.com/matzehuels/taskdag/pkg/pipeline"
	"github.com/matzehuels/taskdag/pkg/store"
	"github.com/matzehuels/taskdag/pkg/task"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	listCursorStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	listMarkStyle   = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
)

// tuiCommand starts the interactive graph browser.
func (c *CLI) tuiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [tasks-file]",
		Short: "Browse the task graph and edit dependencies interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx, argOrEmpty(args))
			if err != nil {
				return err
			}
			defer st.Close()

			// Edits are checked against every task, so the browser never filters.
			opts, err := c.layoutOptions(string(task.FilterAll), 0)
			if err != nil {
				return err
			}
			m := NewGraphModel(ctx, st, command.NewController(st, c.Logger), opts)
			if m.err != nil && m.res == nil {
				reportBuildError(m.err)
				return m.err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	return cmd
}

// =============================================================================
// GraphModel - Interactive task graph
// =============================================================================

type tuiMode int

const (
	modeBrowse tuiMode = iota
	modeAddTarget
	modeRemoveTarget
)

// GraphModel is the bubbletea model for browsing a task graph. Tasks are
// listed layer by layer. Selecting a task focuses it; dependencies are added
// and removed by marking a source and then picking a target, and every new
// dependency passes the cycle guard first.
type GraphModel struct {
	ctx        context.Context
	store      store.Store
	controller *command.Controller
	opts       pipeline.Options

	res    *pipeline.Result
	order  []int // node indices in display order
	focus  int
	cursor int
	offset int
	height int

	mode   tuiMode
	source int // node index marked as the dependency source

	message string
	failed  bool
	err     error
}

// NewGraphModel builds the first layout. opts must already be validated. If
// the layout fails, err is set and the model has no graph.
func NewGraphModel(ctx context.Context, st store.Store, ctl *command.Controller, opts pipeline.Options) GraphModel {
	m := GraphModel{ctx: ctx, store: st, controller: ctl, opts: opts, height: 15, focus: -1}
	m.reload()
	return m
}

// reload rebuilds from the store. A failed rebuild keeps the previous graph.
func (m *GraphModel) reload() {
	records, err := m.store.Load(m.ctx)
	var res *pipeline.Result
	if err == nil {
		res, err = pipeline.Layout(records, m.opts)
	}
	if err != nil {
		m.err = err
		m.setMessage(true, "reload failed: %s", dagerrors.UserMessage(err))
		return
	}

	var selected int
	hadSelection := m.res != nil && len(m.order) > 0
	if hadSelection {
		selected = m.res.Graph.Node(m.order[m.cursor]).ID()
	}

	m.res, m.err = res, nil
	m.order = displayOrder(res.Graph)
	m.cursor = 0
	if hadSelection {
		if i, ok := res.Graph.IndexOf(selected); ok {
			m.cursor = slices.Index(m.order, i)
		}
	}
	m.focus = -1
	if id, ok, err := m.store.Focus(m.ctx); err == nil && ok {
		m.focus = id
	}
	m.clampOffset()
}

// displayOrder sorts node indices by layer, then column.
func displayOrder(g *dag.Graph) []int {
	order := make([]int, g.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		na, nb := g.Node(a), g.Node(b)
		if na.Layer != nb.Layer {
			return na.Layer - nb.Layer
		}
		return na.Column - nb.Column
	})
	return order
}

func (m *GraphModel) setMessage(failed bool, format string, args ...any) {
	m.message, m.failed = fmt.Sprintf(format, args...), failed
}

func (m *GraphModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m GraphModel) selected() *dag.Node {
	return m.res.Graph.Node(m.order[m.cursor])
}

func (m GraphModel) Init() tea.Cmd {
	return nil
}

func (m GraphModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.clampOffset()
			}
		case "down", "j":
			if m.res != nil && m.cursor < len(m.order)-1 {
				m.cursor++
				m.clampOffset()
			}
		case "esc":
			if m.mode != modeBrowse {
				m.mode = modeBrowse
				m.setMessage(false, "cancelled")
			}
		case "a":
			if m.mode == modeBrowse && len(m.order) > 0 {
				m.mode, m.source = modeAddTarget, m.order[m.cursor]
				m.setMessage(false, "add: pick the task that depends on %d", m.selected().ID())
			}
		case "x":
			if m.mode == modeBrowse && len(m.order) > 0 {
				m.mode, m.source = modeRemoveTarget, m.order[m.cursor]
				m.setMessage(false, "remove: pick a successor of %d", m.selected().ID())
			}
		case "r":
			m.reload()
			if m.err == nil {
				m.setMessage(false, "reloaded")
			}
		case "enter", " ":
			if len(m.order) > 0 {
				m.activate()
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 5)
		m.clampOffset()
	}
	return m, nil
}

// activate applies the action for the current mode to the selected task.
func (m *GraphModel) activate() {
	g := m.res.Graph
	target := m.selected()

	switch m.mode {
	case modeBrowse:
		if _, err := m.controller.SelectNode(m.ctx, g, target.ID()); err != nil {
			m.setMessage(true, "%s", dagerrors.UserMessage(err))
			return
		}
		m.setMessage(false, "focused %d", target.ID())
		m.reload()

	case modeAddTarget:
		m.mode = modeBrowse
		from := g.Node(m.source).ID()
		_, d, err := m.controller.ProposeEdge(m.ctx, g, from, target.ID())
		switch {
		case err == nil:
			m.setMessage(false, "added %d %s %d", from, iconArrow, target.ID())
			m.reload()
		case d.Silent():
			m.setMessage(false, "%d %s %d already exists", from, iconArrow, target.ID())
		case d.Reason != "":
			m.setMessage(true, "%s", guard.Explain(d, from, target.ID()))
		default:
			m.setMessage(true, "%s", dagerrors.UserMessage(err))
		}

	case modeRemoveTarget:
		m.mode = modeBrowse
		from := g.Node(m.source).ID()
		if _, err := m.controller.SelectEdge(m.ctx, g, from, target.ID()); err != nil {
			m.setMessage(true, "%s", dagerrors.UserMessage(err))
			return
		}
		m.setMessage(false, "removed %d %s %d", from, iconArrow, target.ID())
		m.reload()
	}
}

func (m GraphModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Task Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ focus  a add dependency  x remove dependency  r reload  q quit"))
	b.WriteString("\n\n")

	if m.res == nil {
		b.WriteString(styleIconError.Render(iconError) + " no layout")
		return b.String()
	}

	g := m.res.Graph
	end := min(m.offset+m.height, len(m.order))
	rows := make([][]string, 0, end-m.offset)
	for _, i := range m.order[m.offset:end] {
		n := g.Node(i)
		marker := "  "
		switch {
		case i == m.order[m.cursor]:
			marker = "▸ "
		case m.mode != modeBrowse && i == m.source:
			marker = "● "
		}
		if n.ID() == m.focus {
			marker = strings.TrimRight(marker, " ") + "*"
		}

		succ := make([]string, len(n.Children))
		for j, c := range n.Children {
			succ[j] = fmt.Sprint(g.Node(c).ID())
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprint(n.ID()),
			n.Task.Text,
			fmt.Sprint(n.Layer),
			fmt.Sprint(n.Column),
			string(n.Status),
			strings.Join(succ, " "),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Task", "Layer", "Col", "Status", "Successors").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(m.order) {
				return lipgloss.NewStyle()
			}
			i := m.order[idx]
			switch {
			case col == 0 && m.mode != modeBrowse && i == m.source:
				return listMarkStyle
			case col == 0:
				return listCursorStyle
			case col == 5:
				return statusStyle(g.Node(i).Status)
			case idx == m.cursor:
				return lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d layers", m.cursor+1, len(m.order), g.MaxLayer()+1)))
	b.WriteString("\n")
	if m.message != "" {
		icon, style := styleIconInfo.Render(iconInfo), StyleValue
		if m.failed {
			icon, style = styleIconError.Render(iconError), StyleWarning
		}
		b.WriteString(icon + " " + style.Render(m.message))
	}
	return b.String()
}
