package main

import (
	"context"
	"io"
	"strings"

	"github.com/TheRipper284/frontend/internal/domain/messaging"
)

// cmdMessages lists conversations, or the thread with one user.
func cmdMessages(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		convs, err := a.messages.Conversations(ctx)
		if err != nil {
			return err
		}
		return a.out.render(convs, func(w io.Writer) {
			row(w, "USER", "NAME", "UNREAD", "LAST MESSAGE")
			for _, c := range convs {
				row(w, c.UserID, c.Name, c.UnreadCount, orDash(c.LastMessage))
			}
			row(w)
			row(w, "TOTAL UNREAD", "", messaging.UnreadTotal(convs))
		})
	}

	user, err := idArg(args, 0, "messages [user-id]", "user id")
	if err != nil {
		return err
	}
	thread, err := a.messages.Thread(ctx, user)
	if err != nil {
		return err
	}
	return a.out.render(thread, func(w io.Writer) { writeThread(w, thread) })
}

func cmdMessage(ctx context.Context, a *app, args []string) error {
	const usage = "message <user-id> <text...>"
	user, err := idArg(args, 0, usage, "user id")
	if err != nil {
		return err
	}
	msg, ok, err := a.messages.Send(ctx, user, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if !ok {
		return usagef(usage, "missing message text")
	}
	return a.out.render(msg, func(w io.Writer) { writeThread(w, []messaging.Message{msg}) })
}

func writeThread(w io.Writer, thread []messaging.Message) {
	row(w, "FROM", "DATE", "CONTENT")
	for _, m := range thread {
		from := "them"
		if m.IsMine {
			from = "me"
		}
		date := "-"
		if m.CreatedAt != nil {
			date = m.CreatedAt.Format("2006-01-02 15:04")
		}
		row(w, from, date, m.Content)
	}
}
