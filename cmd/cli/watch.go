package main

import (
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/yourusername/sstube-go/internal/domain"
)

// eventPrinter renders the event stream with one progress bar per task
type eventPrinter struct {
	out     io.Writer
	verbose bool
	bars    map[string]*progressbar.ProgressBar
	titles  map[string]string
}

func newEventPrinter(out io.Writer, verbose bool) *eventPrinter {
	return &eventPrinter{
		out:     out,
		verbose: verbose,
		bars:    make(map[string]*progressbar.ProgressBar),
		titles:  make(map[string]string),
	}
}

func (p *eventPrinter) bar(taskID string) *progressbar.ProgressBar {
	if bar, ok := p.bars[taskID]; ok {
		return bar
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(truncate(p.titles[taskID], 40)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
	)
	p.bars[taskID] = bar
	return bar
}

func (p *eventPrinter) finish(taskID string) {
	if bar, ok := p.bars[taskID]; ok {
		if !bar.IsFinished() {
			fmt.Fprintln(p.out)
		}
		delete(p.bars, taskID)
	}
}

// handle renders one event
func (p *eventPrinter) handle(event domain.Event) {
	switch event.Type {
	case domain.EventTaskQueued:
		fmt.Fprintf(p.out, "+ queued %s (%d pending)\n", event.URL, event.Pending)

	case domain.EventTaskStarted:
		p.titles[event.TaskID] = event.Title
		fmt.Fprintf(p.out, "> %s\n", event.Title)
		_ = p.bar(event.TaskID).Set(0)

	case domain.EventProgress:
		_ = p.bar(event.TaskID).Set(event.Percent)

	case domain.EventLog:
		if p.verbose {
			fmt.Fprintf(p.out, "  %s\n", event.Line)
		}

	case domain.EventTaskSucceeded:
		_ = p.bar(event.TaskID).Set(100)
		p.finish(event.TaskID)
		fmt.Fprintf(p.out, "✓ %s\n", event.Title)

	case domain.EventTaskFailed:
		p.finish(event.TaskID)
		fmt.Fprintf(p.out, "✗ %s: %s\n", event.Title, event.Error)
		if event.Hint != "" {
			fmt.Fprintf(p.out, "  hint: %s\n", event.Hint)
		}

	case domain.EventTaskCancelled:
		p.finish(event.TaskID)
		fmt.Fprintf(p.out, "- %s cancelled\n", event.Title)

	case domain.EventQueueIdle:
		fmt.Fprintln(p.out, "Queue idle")
	}
}

// streamEvents prints events until stop reports true or the connection closes
func streamEvents(client *apiClient, taskID string, verbose bool, stop func(domain.Event) bool) error {
	query := url.Values{}
	if taskID != "" {
		query.Set("task", taskID)
	}
	wsURL, err := client.websocketURL("/api/v1/events", query)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close()

	printer := newEventPrinter(os.Stdout, verbose)
	for {
		var event domain.Event
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		printer.handle(event)
		if stop != nil && stop(event) {
			return nil
		}
	}
}

// untilTaskDone stops on the terminal event of taskID
func untilTaskDone(taskID string) func(domain.Event) bool {
	return func(e domain.Event) bool {
		return e.TaskID == taskID && e.Type.IsTerminal()
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream queue events with live progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		taskID, _ := cmd.Flags().GetString("task")
		verbose, _ := cmd.Flags().GetBool("verbose")
		exitOnIdle, _ := cmd.Flags().GetBool("exit-on-idle")

		var stop func(domain.Event) bool
		switch {
		case taskID != "":
			stop = untilTaskDone(taskID)
		case exitOnIdle:
			stop = func(e domain.Event) bool { return e.Type == domain.EventQueueIdle }
		}

		return streamEvents(newAPIClient(serverURL), taskID, verbose, stop)
	},
}

func init() {
	watchCmd.Flags().StringP("task", "t", "", "Only follow this task and exit when it finishes")
	watchCmd.Flags().BoolP("verbose", "v", false, "Print raw tool output")
	watchCmd.Flags().Bool("exit-on-idle", false, "Exit when the queue becomes idle")
}
