package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"helpview/help"
)

const prompt = "help> "

// repl reads navigation commands from in until quit or end of input and
// writes each resulting page to out. It returns the last session shown.
func repl(ctx context.Context, cur *help.Session, in io.Reader, out io.Writer, interactive bool, log *zap.Logger) *help.Session {
	fmt.Fprint(out, cur.Render())

	sc := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return cur
		}

		next, err := cur.Do(ctx, line)
		if err != nil {
			log.Error("Navigation failed", zap.String("command", line), zap.Error(err))
			fmt.Fprintf(out, "*** %v ***\n", err)
			continue
		}
		fmt.Fprint(out, next.Render())
		cur = next
		if ctx.Err() != nil {
			break
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("Reading commands failed", zap.Error(err))
	}
	return cur
}

// printAll writes every page of the current subject.
func printAll(out io.Writer, cur *help.Session) {
	for {
		fmt.Fprint(out, cur.Render())
		next := cur.More()
		if next.Notice() != "" {
			return
		}
		cur = next
	}
}
