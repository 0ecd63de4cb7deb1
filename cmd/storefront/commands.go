package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TheRipper284/frontend/internal/domain/shared"
)

// command is one CLI subcommand.
type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

func commandTable() []command {
	return []command{
		{"login", "login -email <email> [-password <password>]", "Sign in", cmdLogin},
		{"register", "register -name <name> -email <email> -password <password> [-role buyer|seller]", "Create an account", cmdRegister},
		{"logout", "logout", "Sign out and forget the local session", cmdLogout},
		{"whoami", "whoami", "Show the signed-in user", cmdWhoami},
		{"forgot-password", "forgot-password -email <email>", "Request a password reset email", cmdForgotPassword},
		{"profile", "profile [-name ..] [-email ..] [-phone ..] [-address ..] [-city ..] [-country ..]", "Update your profile", cmdProfile},
		{"password", "password -current <pw> -new <pw> [-confirm <pw>]", "Change your password", cmdPassword},
		{"products", "products [-search ..] [-category ..] [-min ..] [-max ..] [-sort ..] [-seller ..] [-limit n] [-page n]", "Browse products", cmdProducts},
		{"product", "product <product-id>", "Show a product with its reviews", cmdProduct},
		{"categories", "categories", "List categories", cmdCategories},
		{"cart", "cart <show|add|remove|update|clear|load|sync> ...", "Manage the cart", cmdCart},
		{"checkout", "checkout -address <address> -method card|oxxo|transfer [-card .. -expiry MM/YY -cvv .. -name ..]", "Place an order from the cart", cmdCheckout},
		{"orders", "orders", "List your orders", cmdOrders},
		{"order", "order <order-id>", "Show one order", cmdOrder},
		{"order-status", "order-status <order-id> <status>", "Move an order to a new status", cmdOrderStatus},
		{"reviews", "reviews <product-id>", "List the reviews of a product", cmdReviews},
		{"review", "review -rating 1..5 -comment <text> <product-id>", "Review a product", cmdReview},
		{"messages", "messages [user-id]", "List conversations, or the thread with one user", cmdMessages},
		{"message", "message <user-id> <text...>", "Send a message", cmdMessage},
		{"seller", "seller <dashboard|products|create|update|delete> ...", "Seller dashboard and listings", cmdSeller},
		{"admin", "admin <dashboard|users|products|categories|orders> ...", "Admin panel", cmdAdmin},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commandTable() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// errFailed marks a failure the user was already told about.
var errFailed = errors.New("command failed")

// usageError is bad command-line input. It exits with status 2.
type usageError struct {
	usage string
	msg   string
}

func (e *usageError) Error() string { return e.msg }

func usagef(usage, format string, args ...any) error {
	return &usageError{usage: usage, msg: fmt.Sprintf(format, args...)}
}

// commandError is a local failure that no service reported, printed as is.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// flags returns a flag set for a subcommand. Parse errors are printed by
// the caller.
func flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, usage string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef(usage, "%v", err)
	}
	return nil
}

// idArg returns positional argument i as an ID.
func idArg(args []string, i int, usage, what string) (shared.ID, error) {
	if len(args) <= i || strings.TrimSpace(args[i]) == "" {
		return "", usagef(usage, "missing %s", what)
	}
	return shared.ID(strings.TrimSpace(args[i])), nil
}

func intArg(args []string, i int, usage, what string) (int, error) {
	if len(args) <= i {
		return 0, usagef(usage, "missing %s", what)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, usagef(usage, "%s must be a number, got %q", what, args[i])
	}
	return n, nil
}

// subcommand splits args into the subcommand name and its arguments.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 {
		return def, nil
	}
	return args[0], args[1:]
}
