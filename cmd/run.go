package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lorebot/internal/content"
	"github.com/abhisek/lorebot/internal/engine"
	"github.com/abhisek/lorebot/internal/logger"
	"github.com/abhisek/lorebot/internal/media"
	"github.com/abhisek/lorebot/internal/quiz"
	"github.com/abhisek/lorebot/internal/scores"
	"github.com/abhisek/lorebot/internal/session"
)

// localIdentity is the identity used by the interactive console. When no
// admins are configured it is granted admin so a fresh install can author
// content.
const localIdentity int64 = 1

// runConsole wires the stores and the engine, then serves a line-based
// console over stdin.
func runConsole(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.WithDebug(cfg.Debug), logger.WithJSON(cfg.JSONLogs))

	ledger, err := scores.Open(cfg.ScoresPath)
	if err != nil {
		return fmt.Errorf("open scores: %w", err)
	}
	defer ledger.Close()

	mediaDir := media.NewDir(cfg.MediaDir, logg)

	store, err := content.Open(cfg.ContentPath,
		content.WithLogger(logg),
		content.WithMedia(mediaDir),
		content.WithScores(ledger),
	)
	if err != nil {
		return fmt.Errorf("open content: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := store.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			logg.Warn("content watcher stopped", "err", err)
		}
	}()

	admins := cfg.Admins
	if len(admins) == 0 {
		admins = []int64{localIdentity}
	}
	sessions := session.NewStore(admins)
	quizzes := quiz.NewEngine(ledger, logg)

	eng := engine.New(store, sessions, quizzes, ledger, mediaDir, logg)
	defer eng.Close()

	logg.Info("lorebot started", "content", cfg.ContentPath, "scores", cfg.ScoresPath)
	return console(ctx, cmd, eng)
}

// console reads lines from stdin, feeds them through the engine as the
// local identity, and renders replies. Slash commands cover what a
// transport would deliver out of band: uploads, score listing and session
// reset.
func console(ctx context.Context, cmd *cobra.Command, eng *engine.Engine) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Type a button label to navigate, /help for commands.")

	reply, err := eng.Handle(ctx, localIdentity, "operator", "/start")
	if err != nil {
		return err
	}
	printReply(out, reply)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/help":
			printHelp(out)
			continue
		case line == "/reset":
			if err := eng.Reset(ctx, localIdentity); err != nil {
				return err
			}
			reply, err = eng.Handle(ctx, localIdentity, "operator", "/start")
		case line == "/scores":
			if err := printScores(ctx, out, eng); err != nil {
				return err
			}
			continue
		case strings.HasPrefix(line, "/upload "):
			reply, err = handleUploadCommand(ctx, eng, line)
		default:
			reply, err = eng.Handle(ctx, localIdentity, "operator", line)
		}
		if err != nil {
			return err
		}
		printReply(out, reply)
	}
	return scanner.Err()
}

// handleUploadCommand parses "/upload image|video|quiz <path> [caption]"
// and feeds the file through the engine.
func handleUploadCommand(ctx context.Context, eng *engine.Engine, line string) (engine.Reply, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return engine.Reply{Text: "Usage: /upload image|video|quiz <path> [caption]"}, nil
	}

	var kind engine.UploadKind
	switch fields[1] {
	case "image":
		kind = engine.UploadImage
	case "video":
		kind = engine.UploadVideo
	case "quiz":
		kind = engine.UploadDocument
	default:
		return engine.Reply{Text: "Unknown upload kind: " + fields[1]}, nil
	}

	f, err := os.Open(fields[2])
	if err != nil {
		return engine.Reply{Text: "Cannot open " + fields[2]}, nil
	}
	defer f.Close()

	up := engine.Upload{
		Kind:    kind,
		Name:    filepath.Base(fields[2]),
		Caption: strings.Join(fields[3:], " "),
		Data:    f,
	}
	return eng.HandleUpload(ctx, localIdentity, "operator", up)
}

func printScores(ctx context.Context, out io.Writer, eng *engine.Engine) error {
	results, err := eng.Scores(ctx, localIdentity)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No quiz results yet.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%s: %s\n", r.QuizName, r.Score)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  /upload image|video|quiz <path> [caption]")
	fmt.Fprintln(out, "  /scores   show your quiz results")
	fmt.Fprintln(out, "  /reset    start a fresh session")
	fmt.Fprintln(out, "  /quit     exit")
}

func printReply(out io.Writer, reply engine.Reply) {
	for _, block := range reply.Blocks {
		switch block.Kind {
		case content.BlockText:
			fmt.Fprintln(out, block.Payload)
		default:
			fmt.Fprintf(out, "[%s %s]", block.Kind, block.Payload)
			if block.Caption != "" {
				fmt.Fprintf(out, " %s", block.Caption)
			}
			fmt.Fprintln(out)
		}
	}
	if reply.Text != "" {
		fmt.Fprintln(out, reply.Text)
	}
	for _, row := range reply.Buttons {
		fmt.Fprintf(out, "  [%s]\n", strings.Join(row, "] ["))
	}
}
