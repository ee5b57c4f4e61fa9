package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/ops"
)

const shellPrompt = "orbit> "

// shell is a line-at-a-time REPL over one executor session.
type shell struct {
	exec *ops.Executor
	in   io.Reader
	out  io.Writer

	sess ops.Session
}

func (s *shell) run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	fmt.Fprint(s.out, shellPrompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "exit", "quit":
			return nil
		default:
			if err := s.execute(ctx, scanner, line); err != nil {
				return err
			}
		}
		fmt.Fprint(s.out, shellPrompt)
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

// execute runs one line. A conversion prompt reads the answer from the
// same scanner before moving on.
func (s *shell) execute(ctx context.Context, scanner *bufio.Scanner, line string) error {
	res, sess := s.exec.Run(ctx, s.sess, line)
	s.sess = sess
	s.report(res)

	if res.RequiresConversionPrompt != nil {
		fmt.Fprint(s.out, "Convert to a list? [y/N] ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer == "y" || answer == "yes" {
			res, s.sess = s.exec.Execute(ctx, s.sess, res.RequiresConversionPrompt)
			s.report(res)
		}
		return nil
	}

	if res.Search != nil {
		return s.showSearch(ctx, res.Search)
	}
	return nil
}

func (s *shell) report(res ops.Result) {
	if res.Success {
		fmt.Fprintf(s.out, "ok: %s\n", res.Message)
		return
	}
	fmt.Fprintf(s.out, "error: %s\n", res.Message)
}

// showSearch prints what a search intent points at: matching interactions
// for a contact, the member list for a constellation.
func (s *shell) showSearch(ctx context.Context, intent *ops.SearchIntent) error {
	if intent.ContactID != "" {
		out, err := ops.SearchInteractions(ctx, s.exec.DB(), ops.SearchInput{
			ContactID: intent.ContactID,
			Query:     intent.Query,
			Limit:     20,
		})
		if err != nil {
			return err
		}
		if len(out.Items) == 0 {
			fmt.Fprintln(s.out, "  (no interactions)")
		}
		for _, i := range out.Items {
			fmt.Fprintf(s.out, "  %s\n", formatInteraction(i))
		}
		return nil
	}

	out, err := ops.ListConstellations(ctx, s.exec.DB())
	if err != nil {
		return err
	}
	for _, k := range out.Items {
		if k.ID != intent.ConstellationID {
			continue
		}
		if len(k.Members) == 0 {
			fmt.Fprintln(s.out, "  (no members)")
		}
		for _, m := range k.Members {
			fmt.Fprintf(s.out, "  @%s\n", m.Name)
		}
	}
	return nil
}

// formatInteraction renders one history line: date, impulse, tags, note.
func formatInteraction(i contact.Interaction) string {
	var sb strings.Builder
	sb.WriteString(time.Unix(i.Date, 0).UTC().Format("Jan 2, 2006"))
	sb.WriteString("  ")
	sb.WriteString(i.Impulse)
	for _, t := range i.Tags() {
		sb.WriteString(" #")
		sb.WriteString(t)
	}
	if i.Content != "" {
		sb.WriteString(" - ")
		sb.WriteString(i.Content)
	}
	return sb.String()
}
