package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"basegraph.app/reviewdesk/internal/service"
)

const (
	cmdClear = "/clear"
	cmdQuit  = "/quit"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the review assistant (/clear forgets history, /quit exits)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), a.services.Chat(), a.in, a.out, a.errOut, a.render)
		},
	}
}

func runChat(ctx context.Context, chat service.ChatService, in io.Reader, out, errOut io.Writer, render renderFunc) error {
	sessionID, err := chat.Start(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = chat.End(ctx, sessionID) }()

	fmt.Fprintf(errOut, "Chat ready. %s forgets the conversation, %s exits.\n", cmdClear, cmdQuit)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case cmdQuit, "/exit":
			return nil
		case cmdClear:
			ack, err := chat.Clear(ctx, sessionID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ack)
			continue
		}

		reply, err := chat.Send(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, render(reply))
	}

	fmt.Fprintln(out)
	return scanner.Err()
}
