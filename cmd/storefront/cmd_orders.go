package main

import (
	"context"
	"io"
	"strings"

	"github.com/TheRipper284/frontend/internal/application/checkout"
	"github.com/TheRipper284/frontend/internal/domain/trade"
)

func cmdCheckout(ctx context.Context, a *app, args []string) error {
	const usage = "checkout -address <text> [-method card|oxxo|transfer] [-card .. -expiry MM/YY -cvv .. -name ..]"
	fs := flags("checkout")
	address := fs.String("address", "", "Shipping address")
	method := fs.String("method", string(trade.PaymentCard), "Payment method")
	var card trade.Card
	fs.StringVar(&card.Number, "card", "", "Card number")
	fs.StringVar(&card.Expiry, "expiry", "", "Card expiry as MM/YY")
	fs.StringVar(&card.CVV, "cvv", "", "Card security code")
	fs.StringVar(&card.Name, "name", "", "Name on the card")
	if err := parse(fs, usage, args); err != nil {
		return err
	}

	res, err := a.checkout.PlaceOrder(ctx, checkout.Input{
		ShippingAddress: *address,
		PaymentMethod:   trade.PaymentMethod(strings.ToLower(*method)),
		Card:            card,
	})
	if err != nil {
		return err
	}
	return a.showOrder(res.Order, nil)
}

func cmdOrders(ctx context.Context, a *app, _ []string) error {
	orders, err := a.orders.List(ctx)
	if err != nil {
		return err
	}
	return a.showOrders(orders)
}

func cmdOrder(ctx context.Context, a *app, args []string) error {
	id, err := idArg(args, 0, "order <order-id>", "order id")
	if err != nil {
		return err
	}
	order, err := a.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.showOrder(order, a.orders.Actions(order))
}

func cmdOrderStatus(ctx context.Context, a *app, args []string) error {
	const usage = "order-status <order-id> <status>"
	id, err := idArg(args, 0, usage, "order id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usagef(usage, "missing status")
	}
	target := trade.OrderStatus(strings.ToLower(args[1]))
	if !target.IsValid() {
		return usagef(usage, "unknown status %q", args[1])
	}

	order, err := a.orders.ChangeStatus(ctx, id, target)
	if err != nil {
		return err
	}
	return a.showOrder(order, a.orders.Actions(order))
}

type orderView struct {
	trade.Order `yaml:",inline"`
	Actions     []trade.OrderStatus `json:"actions,omitempty" yaml:"actions,omitempty"`
}

func (a *app) showOrder(o trade.Order, actions []trade.OrderStatus) error {
	return a.out.render(orderView{Order: o, Actions: actions}, func(w io.Writer) {
		row(w, "ORDER", o.ID)
		row(w, "STATUS", o.Status)
		row(w, "TOTAL", o.TotalAmount.StringFixed(2))
		row(w, "PAYMENT", orDash(string(o.PaymentMethod)))
		row(w, "SHIPPING", orDash(o.ShippingAddress))
		if o.CreatedAt != nil {
			row(w, "DATE", o.CreatedAt.Format("2006-01-02 15:04"))
		}
		if len(actions) > 0 {
			names := make([]string, len(actions))
			for i, s := range actions {
				names[i] = string(s)
			}
			row(w, "ACTIONS", strings.Join(names, ", "))
		}
		if len(o.Items) > 0 {
			row(w)
			row(w, "PRODUCT", "TITLE", "PRICE", "QTY", "SELLER")
			for _, it := range o.Items {
				row(w, orDash(string(it.ProductID)), it.Title, it.Price.StringFixed(2), it.Quantity, orDash(it.SellerName))
			}
		}
	})
}

func (a *app) showOrders(orders []trade.Order) error {
	return a.out.render(orders, func(w io.Writer) {
		row(w, "ID", "STATUS", "TOTAL", "PAYMENT", "BUYER", "DATE")
		for _, o := range orders {
			date := "-"
			if o.CreatedAt != nil {
				date = o.CreatedAt.Format("2006-01-02")
			}
			row(w, o.ID, o.Status, o.TotalAmount.StringFixed(2), orDash(string(o.PaymentMethod)), orDash(o.BuyerName), date)
		}
	})
}
