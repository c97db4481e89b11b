package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"notehub/internal/api"
	"notehub/internal/compose"
	"notehub/internal/config"
	"notehub/internal/devserver"
	"notehub/internal/draft"
	"notehub/internal/export"
	"notehub/internal/model"
	"notehub/internal/pkg/jwt"
	"notehub/internal/querycache"
	"notehub/internal/schedule"
	"notehub/internal/service"
	"notehub/internal/view"
)

type app struct {
	cfg   *config.Config
	svc   *service.NoteService
	draft *draft.Store
}

func newApp(configPath string) (*app, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Token, nil)
	cache := querycache.New(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	store := draft.NewStore(draft.NewFileBackend(cfg.DraftPath))
	store.Hydrate(context.Background())

	return &app{
		cfg:   cfg,
		svc:   service.NewNoteService(client, cache),
		draft: store,
	}, nil
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "notehub",
		Short: "notehub command line client",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(
		newListCmd(&configPath),
		newGetCmd(&configPath),
		newCreateCmd(&configPath),
		newDeleteCmd(&configPath),
		newDraftCmd(&configPath),
		newBrowseCmd(&configPath),
		newExportCmd(&configPath),
		newServeCmd(&configPath),
		newTokenCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newListCmd(configPath *string) *cobra.Command {
	var page int
	var search, tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			res, notes := a.svc.List(cmd.Context(), page, search, tag)
			if res.Err != nil {
				return fmt.Errorf("list notes: %w", res.Err)
			}
			printNotesPage(page, notes)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "free text search")
	cmd.Flags().StringVar(&tag, "tag", model.TagAll, "tag filter")
	return cmd
}

func newGetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			res, note := a.svc.Get(cmd.Context(), args[0])
			if res.Err != nil {
				return fmt.Errorf("could not load note: %w", res.Err)
			}
			if note == nil {
				return fmt.Errorf("could not load note")
			}
			fmt.Printf("%s [%s]\n", note.Title, note.Tag)
			fmt.Printf("Created: %s\n\n", note.CreatedAt)
			fmt.Println(note.Content)
			return nil
		},
	}
}

func newCreateCmd(configPath *string) *cobra.Command {
	var title, content, tag string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create a note from flags or the saved draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.draft.Flush()

			session := compose.NewSession(compose.ModeCreate, nil, a.draft, a.svc.SubmitFunc())
			if cmd.Flags().Changed("title") {
				session.SetTitle(title)
			}
			if cmd.Flags().Changed("content") {
				session.SetContent(content)
			}
			if cmd.Flags().Changed("tag") {
				session.SetTag(tag)
			}

			var created *model.Note
			err = session.Submit(cmd.Context(), func(note *model.Note) {
				created = note
			})
			if errors.Is(err, compose.ErrValidationFailed) {
				printFieldErrors(session.Errors())
				return fmt.Errorf("validation failed")
			}
			if err != nil {
				printFieldErrors(session.Errors())
				return fmt.Errorf("create note: %w", err)
			}
			fmt.Printf("Created note %s (%s)\n", created.ID, created.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note content")
	cmd.Flags().StringVar(&tag, "tag", "", "note tag")
	return cmd
}

func newDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			return a.svc.Delete(cmd.Context(), args[0], func(note *model.Note) {
				if note != nil {
					fmt.Printf("Deleted note %s (%s)\n", note.ID, note.Title)
				} else {
					fmt.Println("Deleted note", args[0])
				}
			}, nil)
		},
	}
}

func newDraftCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "inspect or edit the saved draft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "print the saved draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			d := a.draft.Get()
			fmt.Printf("Title:   %s\n", d.Title)
			fmt.Printf("Tag:     %s\n", d.Tag)
			fmt.Printf("Content: %s\n", d.Content)
			return nil
		},
	})

	var title, content, tag string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "update draft fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			var patch model.DraftPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("tag") {
				if !model.ValidTag(tag) {
					return fmt.Errorf("unknown tag %q, want one of: %s", tag, strings.Join(model.Tags(), ", "))
				}
				patch.Tag = &tag
			}
			a.draft.Set(patch)
			a.draft.Flush()
			return nil
		},
	}
	setCmd.Flags().StringVar(&title, "title", "", "draft title")
	setCmd.Flags().StringVar(&content, "content", "", "draft content")
	setCmd.Flags().StringVar(&tag, "tag", "", "draft tag")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "reset the draft to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			a.draft.Clear()
			fmt.Println("Draft cleared")
			return nil
		},
	})

	return cmd
}

func newBrowseCmd(configPath *string) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "browse notes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.svc.PrefetchFirstPage(ctx, tag); err != nil {
				logutil.GetLogger(ctx).Warn("prefetch failed", zap.Error(err))
			}

			controller := view.NewListController(a.svc, tag, 500*time.Millisecond)
			defer controller.Close()
			renderSnapshot(controller.Refresh(ctx))

			fmt.Println(`Commands: /text search, n next, p prev, t <tag> filter, r refresh, q quit`)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "q":
					return nil
				case line == "n":
					renderSnapshot(controller.SetPage(ctx, controller.Snapshot().Page+1))
				case line == "p":
					renderSnapshot(controller.SetPage(ctx, controller.Snapshot().Page-1))
				case line == "r":
					renderSnapshot(controller.Refresh(ctx))
				case strings.HasPrefix(line, "t "):
					renderSnapshot(controller.SetTag(ctx, strings.TrimSpace(strings.TrimPrefix(line, "t "))))
				case strings.HasPrefix(line, "/"):
					controller.SetSearch(ctx, strings.TrimPrefix(line, "/"))
					// Give the debounced query a moment to settle.
					time.Sleep(600 * time.Millisecond)
					renderSnapshot(controller.Snapshot())
				default:
					fmt.Println("unknown command")
				}
			}
		},
	}
	cmd.Flags().StringVar(&tag, "tag", model.TagAll, "tag filter")
	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var tag, outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "export notes to static HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			exporter := export.NewExporter(a.svc)
			count, err := exporter.Export(cmd.Context(), tag, outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d notes to %s\n", count, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", model.TagAll, "tag filter")
	cmd.Flags().StringVar(&outDir, "out", "notes-export", "output directory")
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run a local notes API for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			cfg := a.cfg.Serve

			store := devserver.NewStore(cfg.MaxNotes)
			router := devserver.NewRouter(devserver.RouterDeps{
				Notes:       devserver.NewNotesHandler(store),
				JWTSecret:   []byte(cfg.JWTSecret),
				WriteWindow: time.Duration(cfg.WriteWindowMS) * time.Millisecond,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler := schedule.NewCronScheduler()
			if err := scheduler.AddJob(devserver.NewStoreJanitorJob(store), "* * * * *"); err != nil {
				return err
			}
			scheduler.Start(ctx)
			defer scheduler.Stop()

			addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
			srv := &http.Server{Addr: addr, Handler: router}
			logutil.GetLogger(ctx).Info("dev server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logutil.GetLogger(ctx).Error("server error", zap.Error(err))
				}
			}()

			<-ctx.Done()
			logutil.GetLogger(ctx).Info("dev server stopping...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newTokenCmd(configPath *string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "mint a bearer token for the dev server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			cfg := a.cfg.Serve
			token, err := jwt.GenerateToken(email, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "dev@localhost", "email claim")
	return cmd
}

func printNotesPage(page int, notes *model.NotesPage) {
	if notes == nil || len(notes.Notes) == 0 {
		fmt.Println("No notes found")
		return
	}
	for _, note := range notes.Notes {
		excerpt := model.Excerpt(note.Content, 60)
		if excerpt != "" {
			excerpt = " - " + excerpt
		}
		fmt.Printf("%s  [%-8s] %s%s\n", note.ID, note.Tag, note.Title, excerpt)
	}
	fmt.Printf("Page %d of %d\n", page, notes.TotalPages)
}

func renderSnapshot(snap view.Snapshot) {
	header := "All Notes"
	if snap.Tag != "" {
		header = snap.Tag + " Notes"
	}
	if snap.Search != "" {
		header += fmt.Sprintf(" matching %q", snap.Search)
	}
	fmt.Println(header)
	if snap.Err != nil {
		fmt.Println("Error:", snap.Err)
	}
	printNotesPage(snap.Page, snap.Data)
	if snap.IsFetching {
		fmt.Println("Updating...")
	}
}

func printFieldErrors(errs map[string]string) {
	for field, msg := range errs {
		fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
	}
}
