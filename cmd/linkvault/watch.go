package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
	"github.com/MrSnakeDoc/linkvault/internal/subscriber"
)

var (
	watchServer      string
	watchToken       string
	watchQuery       string
	watchCategory    int64
	watchPrivacy     string
	watchMaxAttempts int
	watchBaseDelay   time.Duration
	watchLogLevel    string
)

func defaultServer() string {
	if s := os.Getenv("LINKVAULT_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live bookmark and category changes",
	Long: `Follow live bookmark and category changes.

Bookmark events are filtered locally with the same rule the server uses for
listings, so the output matches what a filtered listing would show.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New(watchLogLevel, isTerminal(os.Stderr))
		defer func() { _ = log.Sync() }()

		filter := domain.Filter{
			Query:   watchQuery,
			Privacy: domain.ParsePrivacy(watchPrivacy),
		}
		if cmd.Flags().Changed("category") {
			filter.CategoryID = &watchCategory
		}
		capability := domain.Public
		if watchToken != "" {
			capability = domain.Admin
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return watch(ctx, cmd.OutOrStdout(), subscriber.NewHTTPTransport(watchServer, watchToken, nil),
			filter, capability, subscriber.Options{
				MaxAttempts: watchMaxAttempts,
				BaseDelay:   watchBaseDelay,
				Logger:      log,
			})
	},
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchServer, "server", defaultServer(), "LinkVault base URL (env LINKVAULT_URL)")
	f.StringVar(&watchToken, "token", os.Getenv("LINKVAULT_ADMIN_TOKEN"), "admin bearer token, shows private bookmarks")
	f.StringVarP(&watchQuery, "query", "q", "", "only bookmarks whose title, url or description contain this text")
	f.Int64Var(&watchCategory, "category", 0, "only bookmarks in this category id")
	f.StringVar(&watchPrivacy, "private", "", "admin only: true for private bookmarks, false for public ones")
	f.IntVar(&watchMaxAttempts, "max-attempts", subscriber.DefaultMaxAttempts, "consecutive reconnects before giving up")
	f.DurationVar(&watchBaseDelay, "base-delay", subscriber.DefaultBaseDelay, "first reconnect delay, doubled on each attempt")
	f.StringVar(&watchLogLevel, "log-level", "warn", "debug | info | warn | error")
}

// watch prints admitted events to out until ctx ends or the subscriber
// gives up reconnecting.
func watch(ctx context.Context, out io.Writer, t subscriber.Transport, filter domain.Filter, c domain.Capability, opts subscriber.Options) error {
	p := &printer{out: out}
	d := subscriber.NewDispatcher(p.handlers(), filter, c, opts.Logger)

	gaveUp := make(chan struct{}, 1)
	opts.OnStateChange = func(st subscriber.State) {
		if st == subscriber.Disconnected {
			select {
			case gaveUp <- struct{}{}:
			default:
			}
		}
	}

	s := subscriber.Subscribe(t, d.Dispatch, opts)
	defer s.Close()

	select {
	case <-ctx.Done():
		return nil
	case <-gaveUp:
		return fmt.Errorf("lost connection after %d attempts", s.Attempts())
	}
}

type printer struct {
	out io.Writer
}

func (p *printer) handlers() subscriber.Handlers {
	return subscriber.Handlers{
		OnConnected: func(e domain.Connected) {
			p.line("connected", e.Message)
		},
		OnBookmarkCreated: func(b domain.Bookmark) {
			p.line("+ bookmark", describeBookmark(b))
		},
		OnBookmarkUpdated: func(b domain.Bookmark) {
			p.line("~ bookmark", describeBookmark(b))
		},
		OnBookmarkDeleted: func(e domain.Deleted) {
			p.line("- bookmark", fmt.Sprintf("#%d", e.ID))
		},
		OnCategoryCreated: func(c domain.Category) {
			p.line("+ category", describeCategory(c))
		},
		OnCategoryUpdated: func(c domain.Category) {
			p.line("~ category", describeCategory(c))
		},
		OnCategoryDeleted: func(e domain.Deleted) {
			p.line("- category", fmt.Sprintf("#%d", e.ID))
		},
	}
}

func (p *printer) line(kind, msg string) {
	fmt.Fprintf(p.out, "%-10s %s\n", kind, msg)
}

func describeBookmark(b domain.Bookmark) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s <%s>", b.ID, b.Title, b.URL)
	if b.Category != nil {
		fmt.Fprintf(&sb, " [%s]", b.Category.Name)
	}
	if b.IsPrivate {
		sb.WriteString(" (private)")
	}
	return sb.String()
}

func describeCategory(c domain.Category) string {
	s := fmt.Sprintf("#%d %s %s", c.ID, c.Name, c.Color)
	if c.Emoji != nil {
		s += " " + *c.Emoji
	}
	return s
}
