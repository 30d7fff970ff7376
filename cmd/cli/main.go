package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/yourusername/sstube-go/internal/app"
	"github.com/yourusername/sstube-go/internal/domain"
	"github.com/yourusername/sstube-go/pkg/logger"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:           "sstube",
		Short:         "sstube CLI - queue YouTube videos, playlists and channels for download",
		Long:          `A command-line interface for the sstube download queue. Downloads run one at a time through yt-dlp.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8085", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(logsCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// addRequestFlags registers the options shared by add and collection
func addRequestFlags(cmd *cobra.Command, defaultMode string) {
	cmd.Flags().StringP("mode", "m", defaultMode, "Download mode (video, audio, playlist-video, playlist-audio, channel-videos, channel-shorts, ...)")
	cmd.Flags().StringP("quality", "q", "", "Maximum video quality, e.g. 1080p (default from server config)")
	cmd.Flags().IntP("bitrate", "b", 0, "Audio bitrate in kbps (default from server config)")
	cmd.Flags().StringP("dir", "d", "", "Destination directory (default from server config)")
	cmd.Flags().String("cookies", "", "Netscape cookie file for authenticated downloads")
}

func requestFromFlags(cmd *cobra.Command, rawURL string) app.DownloadRequest {
	mode, _ := cmd.Flags().GetString("mode")
	quality, _ := cmd.Flags().GetString("quality")
	bitrate, _ := cmd.Flags().GetInt("bitrate")
	dir, _ := cmd.Flags().GetString("dir")
	cookies, _ := cmd.Flags().GetString("cookies")

	return app.DownloadRequest{
		URL:            rawURL,
		Mode:           mode,
		DestinationDir: dir,
		VideoQuality:   quality,
		AudioBitrate:   bitrate,
		CookieFile:     cookies,
	}
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Queue a single video or audio download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		client := newAPIClient(serverURL)

		var task domain.DownloadTask
		if err := client.do(http.MethodPost, "/api/v1/tasks", requestFromFlags(cmd, args[0]), &task); err != nil {
			return err
		}

		fmt.Printf("Download queued!\n")
		fmt.Printf("ID:   %s\n", task.ID)
		fmt.Printf("Mode: %s\n", task.Mode)
		fmt.Printf("Dir:  %s\n", task.DestinationDir)

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return streamEvents(client, task.ID, false, untilTaskDone(task.ID))
		}
		return nil
	},
}

var collectionCmd = &cobra.Command{
	Use:   "collection [url]",
	Short: "List a playlist or channel and queue selected entries",
	Long: `Resolves a playlist or channel into its entries. Without --all or --select
the entries are only listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		client := newAPIClient(serverURL)
		req := requestFromFlags(cmd, args[0])

		fmt.Println("Resolving collection...")
		var listing app.CollectionListing
		if err := client.do(http.MethodPost, "/api/v1/collections/resolve", req, &listing); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTITLE\tURL")
		for i, entry := range listing.Entries {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, truncate(entry.Title, 60), entry.URL)
		}
		w.Flush()

		all, _ := cmd.Flags().GetBool("all")
		selection, _ := cmd.Flags().GetString("select")

		var chosen []domain.MediaEntry
		switch {
		case all:
			chosen = listing.Entries
		case selection != "":
			indices, err := ParseSelection(selection, len(listing.Entries))
			if err != nil {
				return err
			}
			for _, i := range indices {
				chosen = append(chosen, listing.Entries[i])
			}
		default:
			fmt.Printf("\n%d entries. Use --all or --select 1,3-5 to queue them.\n", len(listing.Entries))
			return nil
		}

		var result struct {
			Count int `json:"count"`
		}
		selectionReq := app.SelectionRequest{DownloadRequest: req, Entries: chosen}
		if err := client.do(http.MethodPost, "/api/v1/collections/enqueue", selectionReq, &result); err != nil {
			return err
		}
		fmt.Printf("\nQueued %d of %d entries\n", result.Count, len(listing.Entries))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active and pending tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var snapshot app.QueueSnapshot
		if err := newAPIClient(serverURL).do(http.MethodGet, "/api/v1/queue", nil, &snapshot); err != nil {
			return err
		}

		if snapshot.Active == nil && len(snapshot.Pending) == 0 {
			fmt.Println("Queue is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STATE\tID\tMODE\tTITLE/URL")
		if snapshot.Active != nil {
			fmt.Fprintf(w, "active\t%s\t%s\t%s\n",
				truncate(snapshot.Active.ID, 8), snapshot.Active.Mode, truncate(snapshot.Active.DisplayName(), 60))
		}
		for _, task := range snapshot.Pending {
			fmt.Fprintf(w, "pending\t%s\t%s\t%s\n",
				truncate(task.ID, 8), task.Mode, truncate(task.DisplayName(), 60))
		}
		return w.Flush()
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel the active task or remove a pending one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		if err := newAPIClient(serverURL).do(http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(args[0]), nil, nil); err != nil {
			return err
		}
		fmt.Println("Task cancelled")
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		client := newAPIClient(serverURL)

		if clearAll, _ := cmd.Flags().GetBool("clear"); clearAll {
			if err := client.do(http.MethodDelete, "/api/v1/history", nil, nil); err != nil {
				return err
			}
			fmt.Println("History cleared")
			return nil
		}

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			var s domain.HistoryStats
			if err := client.do(http.MethodGet, "/api/v1/history/stats", nil, &s); err != nil {
				return err
			}
			fmt.Println("Download History:")
			fmt.Printf("  Total:     %d\n", s.Total)
			fmt.Printf("  Completed: %d\n", s.Completed)
			fmt.Printf("  Failed:    %d\n", s.Failed)
			fmt.Printf("  Cancelled: %d\n", s.Cancelled)
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		var result struct {
			Records []domain.HistoryRecord `json:"records"`
		}
		if err := client.do(http.MethodGet, "/api/v1/history?limit="+strconv.Itoa(limit), nil, &result); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FINISHED\tSTATUS\tMODE\tTITLE")
		for _, r := range result.Records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				r.FinishedAt.Local().Format(time.DateTime), r.Status, r.Mode, truncate(r.Title, 60))
		}
		return w.Flush()
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs [category]",
	Short: "View server logs (queue, error, download)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		client := newAPIClient(serverURL)

		category, err := logger.ParseCategory(args[0])
		if err != nil {
			return err
		}

		if follow, _ := cmd.Flags().GetBool("follow"); follow {
			return followLogs(client, category)
		}

		query := url.Values{}
		limit, _ := cmd.Flags().GetInt("limit")
		query.Set("limit", strconv.Itoa(limit))
		path := "/api/v1/logs/" + string(category)
		if search, _ := cmd.Flags().GetString("search"); search != "" {
			path += "/search"
			query.Set("q", search)
		}

		var result struct {
			Entries []logger.LogEntry `json:"entries"`
		}
		if err := client.do(http.MethodGet, path+"?"+query.Encode(), nil, &result); err != nil {
			return err
		}
		for _, entry := range result.Entries {
			printLogEntry(entry)
		}
		return nil
	},
}

func followLogs(client *apiClient, category logger.LogCategory) error {
	wsURL, err := client.websocketURL("/api/v1/logs/"+string(category)+"/stream", nil)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to log stream: %w", err)
	}
	defer conn.Close()

	for {
		var entry logger.LogEntry
		if err := conn.ReadJSON(&entry); err != nil {
			return err
		}
		printLogEntry(entry)
	}
}

func printLogEntry(entry logger.LogEntry) {
	if entry.Timestamp == "" {
		fmt.Println(entry.Message)
		return
	}
	fmt.Printf("%s %-5s %s", entry.Timestamp, entry.Level, entry.Message)
	for key, value := range entry.Fields {
		fmt.Printf(" %s=%v", key, value)
	}
	fmt.Println()
}

func init() {
	addRequestFlags(addCmd, "video")
	addCmd.Flags().BoolP("watch", "w", false, "Follow the task until it finishes")

	addRequestFlags(collectionCmd, "playlist-video")
	collectionCmd.Flags().Bool("all", false, "Queue every entry")
	collectionCmd.Flags().StringP("select", "s", "", "Queue entries by number, e.g. 1,3-5")

	historyCmd.Flags().IntP("limit", "n", 20, "Number of records to show")
	historyCmd.Flags().Bool("clear", false, "Delete all history")
	historyCmd.Flags().Bool("stats", false, "Show counts per status")

	logsCmd.Flags().IntP("limit", "n", 100, "Number of entries to show")
	logsCmd.Flags().String("search", "", "Only show entries containing this text")
	logsCmd.Flags().BoolP("follow", "f", false, "Stream new entries")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
