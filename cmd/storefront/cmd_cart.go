package main

import (
	"context"
	"io"

	"github.com/TheRipper284/frontend/internal/domain/cart"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// cmdCart works on the local cart. Changes are mirrored to the server cart
// while a session is active.
func cmdCart(ctx context.Context, a *app, args []string) error {
	const usage = "cart <show|add|remove|update|clear|load|sync> ..."
	sub, rest := subcommand(args, "show")
	switch sub {
	case "show":
		return a.showCart()

	case "add":
		const addUsage = "cart add [-qty n] <product-id>"
		fs := flags("cart add")
		qty := fs.Int("qty", 1, "Quantity to add")
		if err := parse(fs, addUsage, rest); err != nil {
			return err
		}
		id, err := idArg(fs.Args(), 0, addUsage, "product id")
		if err != nil {
			return err
		}
		p, err := a.catalog.Product(ctx, id)
		if err != nil {
			return err
		}
		if p.Stock == 0 {
			a.notifier.Error(notify.MsgOutOfStock)
			return errFailed
		}
		a.cart.AddItem(ctx, p.CartProduct(), p.ClampQuantity(*qty))

	case "remove":
		id, err := idArg(rest, 0, "cart remove <product-id>", "product id")
		if err != nil {
			return err
		}
		a.cart.RemoveItem(ctx, id)

	case "update":
		const updateUsage = "cart update <product-id> <quantity>"
		id, err := idArg(rest, 0, updateUsage, "product id")
		if err != nil {
			return err
		}
		q, err := intArg(rest, 1, updateUsage, "quantity")
		if err != nil {
			return err
		}
		a.cart.UpdateQuantity(ctx, id, q)

	case "clear":
		a.cart.ClearCart(ctx)

	case "load":
		a.cart.LoadCart(ctx)

	case "sync":
		a.cart.SyncWithServer(ctx)

	default:
		return usagef(usage, "unknown cart command %q", sub)
	}
	return a.showCart()
}

type cartView struct {
	Items cart.Lines `json:"items" yaml:"items"`
	Total string     `json:"total" yaml:"total"`
	Count int        `json:"count" yaml:"count"`
}

func (a *app) showCart() error {
	lines := a.cart.Items()
	view := cartView{Items: lines, Total: lines.Total().StringFixed(2), Count: lines.Count()}
	return a.out.render(view, func(w io.Writer) {
		row(w, "ID", "TITLE", "PRICE", "QTY", "SUBTOTAL")
		for _, li := range lines {
			row(w, li.ID, li.Title, li.Price.StringFixed(2), li.Quantity, li.Subtotal().StringFixed(2))
		}
		row(w)
		row(w, "TOTAL", "", "", view.Count, view.Total)
	})
}
