package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	metaStyle  = lipgloss.NewStyle().Faint(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)
)

// TerminalPlatform shows notifications as boxes on a terminal. It owns the
// input stream: a line typed while a permission prompt waits answers the
// prompt, an empty line activates the last notification, anything else goes
// to the input hook.
type TerminalPlatform struct {
	out       io.Writer
	supported bool

	mu         sync.Mutex
	permission Permission
	eof        bool
	decided    chan struct{}
	lastClick  func()
	onInput    func(line string)
}

func NewTerminalPlatform(in io.Reader, out io.Writer, permission Permission, supported bool) *TerminalPlatform {
	platform := &TerminalPlatform{
		out:        out,
		supported:  supported,
		permission: permission,
	}
	if in != nil {
		go platform.scan(in)
	} else {
		platform.eof = true
	}
	return platform
}

// Hook for input lines that are neither prompt answers nor clicks
func (platform *TerminalPlatform) OnInput(fn func(line string)) {
	platform.mu.Lock()
	platform.onInput = fn
	platform.mu.Unlock()
}

func (platform *TerminalPlatform) Supported() bool {
	return platform.supported
}

func (platform *TerminalPlatform) Permission() Permission {
	platform.mu.Lock()
	defer platform.mu.Unlock()
	return platform.permission
}

// RequestPermission prompts on the terminal and waits for the answer.
// Concurrent callers share one prompt. Once input is exhausted nobody can
// answer, so an undecided permission becomes denied.
func (platform *TerminalPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	platform.mu.Lock()
	if platform.permission == PermissionDefault && platform.eof {
		platform.permission = PermissionDenied
	}
	if platform.permission != PermissionDefault {
		permission := platform.permission
		platform.mu.Unlock()
		return permission, nil
	}

	decided := platform.decided
	if decided == nil {
		decided = make(chan struct{})
		platform.decided = decided
		fmt.Fprint(platform.out, "Allow notifications from the relay? [y/N] ")
	}
	platform.mu.Unlock()

	select {
	case <-decided:
		return platform.Permission(), nil
	case <-ctx.Done():
		return PermissionError, ctx.Err()
	}
}

// Resolve the pending prompt, if any. Caller holds mu.
func (platform *TerminalPlatform) decide(permission Permission) bool {
	if platform.decided == nil {
		return false
	}
	platform.permission = permission
	close(platform.decided)
	platform.decided = nil
	return true
}

func (platform *TerminalPlatform) Show(display Display) error {
	lines := []string{titleStyle.Render(display.Title)}
	if display.Body != "" {
		lines = append(lines, bodyStyle.Render(display.Body))
	}

	meta := display.Timestamp.Format("15:04:05")
	if display.OnClick != nil {
		meta += "  (press Enter to open)"
	}
	lines = append(lines, metaStyle.Render(meta))

	platform.mu.Lock()
	platform.lastClick = display.OnClick
	platform.mu.Unlock()

	_, err := fmt.Fprintln(platform.out, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	return err
}

func (platform *TerminalPlatform) Alert(text string) {
	// The bell makes it disruptive
	fmt.Fprintln(platform.out, "\a"+alertStyle.Render("ALERT: "+text))
}

// Nothing to raise, the user is already typing into this terminal
func (platform *TerminalPlatform) Focus() {}

// Activate the last notification shown, if any
func (platform *TerminalPlatform) Click() {
	platform.mu.Lock()
	click := platform.lastClick
	platform.mu.Unlock()

	if click != nil {
		click()
	}
}

func (platform *TerminalPlatform) scan(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		platform.handleLine(scanner.Text())
	}

	platform.mu.Lock()
	platform.eof = true
	platform.decide(PermissionDenied)
	platform.mu.Unlock()
}

func (platform *TerminalPlatform) handleLine(line string) {
	platform.mu.Lock()
	answer := PermissionDenied
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		answer = PermissionGranted
	}
	if platform.decide(answer) {
		platform.mu.Unlock()
		return
	}
	onInput := platform.onInput
	platform.mu.Unlock()

	switch {
	case strings.TrimSpace(line) == "":
		platform.Click()
	case onInput != nil:
		onInput(line)
	}
}
