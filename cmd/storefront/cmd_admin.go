package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/TheRipper284/frontend/internal/domain/admin"
	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

const adminUsage = "admin <dashboard|users|products|categories|orders> ..."

// cmdAdmin is the admin panel.
func cmdAdmin(ctx context.Context, a *app, args []string) error {
	area, rest := subcommand(args, "dashboard")
	switch area {
	case "dashboard":
		return a.adminDashboard(ctx)
	case "users":
		return a.adminUsers(ctx, rest)
	case "products":
		return a.adminProducts(ctx, rest)
	case "categories":
		return a.adminCategories(ctx, rest)
	case "orders":
		return a.adminOrders(ctx, rest)
	}
	return usagef(adminUsage, "unknown admin area %q", area)
}

func (a *app) adminDashboard(ctx context.Context) error {
	d, err := a.admin.Dashboard(ctx)
	if err != nil {
		return err
	}
	return a.out.render(d, func(w io.Writer) {
		row(w, "USERS", d.TotalUsers)
		for _, role := range []string{"buyer", "seller", "admin"} {
			row(w, "  "+role, d.UsersByRole[role])
		}
		row(w, "PRODUCTS", d.TotalProducts)
		row(w, "ORDERS", d.TotalOrders)
		row(w, "SALES", d.TotalSales.StringFixed(2))
		if len(d.RecentOrders) > 0 {
			row(w)
			row(w, "ORDER", "CUSTOMER", "AMOUNT", "STATUS")
			for _, o := range d.RecentOrders {
				row(w, o.ID, orDash(o.Customer), o.Amount.StringFixed(2), o.Status)
			}
		}
	})
}

// listFlags registers the common list filter plus one extra filter key.
func listFlags(name, filter string) (*flag.FlagSet, *admin.ListQuery, *string) {
	fs := flags(name)
	q := admin.DefaultListQuery()
	fs.IntVar(&q.Page, "page", q.Page, "Page number")
	fs.IntVar(&q.Limit, "limit", q.Limit, "Page size")
	fs.StringVar(&q.Sort, "sort", q.Sort, "Sort field")
	fs.StringVar(&q.Order, "order", q.Order, "asc or desc")
	extra := fs.String(filter, "", "Filter by "+filter)
	return fs, &q, extra
}

func (a *app) adminUsers(ctx context.Context, args []string) error {
	const usage = "admin users <list|show|update|status|delete> ..."
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs, q, role := listFlags("admin users list", "role")
		if err := parse(fs, usage, rest); err != nil {
			return err
		}
		q.Filter = map[string]string{"role": *role}
		page, err := a.admin.Users(ctx, *q)
		if err != nil {
			return err
		}
		return a.out.render(page, func(w io.Writer) {
			row(w, "ID", "NAME", "EMAIL", "ROLE", "STATUS")
			for _, u := range page.Data {
				row(w, u.ID, u.Name, u.Email, u.Role, orDash(string(u.Status)))
			}
			writePagination(w, page.Pagination)
		})

	case "show":
		id, err := idArg(rest, 0, "admin users show <user-id>", "user id")
		if err != nil {
			return err
		}
		u, err := a.admin.User(ctx, id)
		if err != nil {
			return err
		}
		return a.showUser(&u)

	case "update":
		const updateUsage = "admin users update [-name ..] [-email ..] [-role ..] <user-id>"
		fs := flags("admin users update")
		var in admin.UserUpdate
		fs.StringVar(&in.Name, "name", "", "New name")
		fs.StringVar(&in.Email, "email", "", "New email")
		fs.StringVar(&in.Role, "role", "", "buyer, seller or admin")
		if err := parse(fs, updateUsage, rest); err != nil {
			return err
		}
		id, err := idArg(fs.Args(), 0, updateUsage, "user id")
		if err != nil {
			return err
		}
		if in == (admin.UserUpdate{}) {
			return usagef(updateUsage, "nothing to update")
		}
		return a.admin.UpdateUser(ctx, id, in)

	case "status":
		const statusUsage = "admin users status <user-id> <active|inactive>"
		id, err := idArg(rest, 0, statusUsage, "user id")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return usagef(statusUsage, "missing status")
		}
		return a.admin.SetUserStatus(ctx, id, identity.UserStatus(strings.ToLower(rest[1])))

	case "delete":
		id, err := idArg(rest, 0, "admin users delete <user-id>", "user id")
		if err != nil {
			return err
		}
		label := id.String()
		if u, err := a.admin.User(ctx, id); err == nil && u.Name != "" {
			label = u.Name
		}
		return a.admin.DeleteUser(ctx, id, label)
	}
	return usagef(usage, "unknown users command %q", sub)
}

func (a *app) adminProducts(ctx context.Context, args []string) error {
	const usage = "admin products <list|show|update|status|delete> ..."
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs, q, category := listFlags("admin products list", "category")
		status := fs.String("status", "", "Filter by status")
		if err := parse(fs, usage, rest); err != nil {
			return err
		}
		q.Filter = map[string]string{"category": *category, "status": *status}
		page, err := a.admin.Products(ctx, *q)
		if err != nil {
			return err
		}
		return a.out.render(page, func(w io.Writer) {
			row(w, "ID", "TITLE", "PRICE", "STOCK", "SELLER", "STATUS")
			for _, p := range page.Data {
				row(w, p.ID, p.Title, p.Price.StringFixed(2), p.Stock, orDash(p.SellerName), orDash(string(p.Status)))
			}
			writePagination(w, page.Pagination)
		})

	case "show":
		id, err := idArg(rest, 0, "admin products show <product-id>", "product id")
		if err != nil {
			return err
		}
		p, err := a.admin.Product(ctx, id)
		if err != nil {
			return err
		}
		return a.showProducts([]catalog.Product{p})

	case "update":
		const updateUsage = "admin products update -title .. -description .. -price .. -stock n -category <id> [-status ..] <product-id>"
		f := productFlags("admin products update")
		if err := parse(f.set, updateUsage, rest); err != nil {
			return err
		}
		if *f.image != "" {
			return usagef(updateUsage, "images are uploaded with seller update")
		}
		id, err := idArg(f.set.Args(), 0, updateUsage, "product id")
		if err != nil {
			return err
		}
		in, _, err := f.build(updateUsage)
		if err != nil {
			return err
		}
		return a.admin.UpdateProduct(ctx, id, in)

	case "status":
		const statusUsage = "admin products status <product-id> <active|inactive>"
		id, err := idArg(rest, 0, statusUsage, "product id")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return usagef(statusUsage, "missing status")
		}
		return a.admin.SetProductStatus(ctx, id, catalog.ProductStatus(strings.ToLower(rest[1])))

	case "delete":
		id, err := idArg(rest, 0, "admin products delete <product-id>", "product id")
		if err != nil {
			return err
		}
		return a.admin.DeleteProduct(ctx, id)
	}
	return usagef(usage, "unknown products command %q", sub)
}

func (a *app) adminCategories(ctx context.Context, args []string) error {
	const usage = "admin categories <list|create|update|delete> ..."
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		categories, err := a.admin.Categories(ctx)
		if err != nil {
			return err
		}
		return a.showCategories(categories)

	case "create", "update":
		formUsage := "admin categories " + sub + " -name .. [-description ..]"
		if sub == "update" {
			formUsage += " <category-id>"
		}
		fs := flags("admin categories " + sub)
		var in catalog.CategoryInput
		fs.StringVar(&in.Name, "name", "", "Category name")
		fs.StringVar(&in.Description, "description", "", "Category description")
		if err := parse(fs, formUsage, rest); err != nil {
			return err
		}
		in.Name = strings.TrimSpace(in.Name)
		in.Description = strings.TrimSpace(in.Description)
		if sub == "create" {
			return a.admin.SaveCategory(ctx, "", in)
		}
		id, err := idArg(fs.Args(), 0, formUsage, "category id")
		if err != nil {
			return err
		}
		return a.admin.SaveCategory(ctx, id, in)

	case "delete":
		id, err := idArg(rest, 0, "admin categories delete <category-id>", "category id")
		if err != nil {
			return err
		}
		return a.admin.DeleteCategory(ctx, id)
	}
	return usagef(usage, "unknown categories command %q", sub)
}

func (a *app) adminOrders(ctx context.Context, args []string) error {
	const usage = "admin orders <list|show|status> ..."
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs, q, status := listFlags("admin orders list", "status")
		if err := parse(fs, usage, rest); err != nil {
			return err
		}
		q.Filter = map[string]string{"status": *status}
		page, err := a.admin.Orders(ctx, *q)
		if err != nil {
			return err
		}
		return a.out.render(page, func(w io.Writer) {
			row(w, "ID", "STATUS", "TOTAL", "BUYER")
			for _, o := range page.Data {
				row(w, o.ID, o.Status, o.TotalAmount.StringFixed(2), orDash(o.BuyerName))
			}
			writePagination(w, page.Pagination)
		})

	case "show":
		id, err := idArg(rest, 0, "admin orders show <order-id>", "order id")
		if err != nil {
			return err
		}
		o, err := a.admin.Order(ctx, id)
		if err != nil {
			return err
		}
		return a.showOrder(o, nil)

	case "status":
		const statusUsage = "admin orders status <order-id> <status>"
		id, err := idArg(rest, 0, statusUsage, "order id")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return usagef(statusUsage, "missing status")
		}
		status := trade.OrderStatus(strings.ToLower(rest[1]))
		if !status.IsValid() {
			return usagef(statusUsage, "unknown status %q", rest[1])
		}
		return a.admin.SetOrderStatus(ctx, id, status)
	}
	return usagef(usage, "unknown orders command %q", sub)
}

func writePagination(w io.Writer, p apiclient.Pagination) {
	row(w)
	row(w, fmt.Sprintf("page %d of %d (%d total)", p.Page, p.TotalPages, p.Total))
}
