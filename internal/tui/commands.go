package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmtab/internal/background"
	"github.com/nikbrunner/bmtab/internal/controller"
	"github.com/nikbrunner/bmtab/internal/model"
)

// treeLoadedMsg carries the result of a host GetTree call.
type treeLoadedMsg struct {
	root *model.Node
	err  error
}

// mutationDoneMsg carries the host outcome of a save or delete.
type mutationDoneMsg struct {
	mutation *controller.Mutation
	err      error
}

// backgroundDoneMsg carries a finished background fetch.
type backgroundDoneMsg struct {
	result background.Result
}

// clockTickMsg refreshes the header clock.
type clockTickMsg time.Time

// messageExpiredMsg re-renders once an action message has timed out.
type messageExpiredMsg struct{}

// openedMsg reports the outcome of handing a URL to the browser.
type openedMsg struct {
	url string
	err error
}

func (a App) loadTreeCmd() tea.Cmd {
	host := a.ctrl.Host()
	ctx := a.ctx
	return func() tea.Msg {
		root, err := host.GetTree(ctx)
		return treeLoadedMsg{root: root, err: err}
	}
}

func (a App) mutationCmd(m *controller.Mutation) tea.Cmd {
	host := a.ctrl.Host()
	ctx := a.ctx
	return func() tea.Msg {
		return mutationDoneMsg{mutation: m, err: m.Run(ctx, host)}
	}
}

// startBackgroundFetch marks the fetch as running and returns the command
// doing the network work, or nil when one is already in flight.
func (a App) startBackgroundFetch() tea.Cmd {
	if a.bg == nil || !a.bg.BeginFetch() {
		return nil
	}
	bg := a.bg
	ctx := a.ctx
	return func() tea.Msg {
		return backgroundDoneMsg{result: bg.Run(ctx)}
	}
}

func (a App) clockTickCmd() tea.Cmd {
	return tea.Tick(a.clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func messageExpiryCmd() tea.Cmd {
	return tea.Tick(model.MessageDuration, func(time.Time) tea.Msg {
		return messageExpiredMsg{}
	})
}

func (a App) openURLCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		return openedMsg{url: url, err: open(url)}
	}
}
