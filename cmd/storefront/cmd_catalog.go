package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

func cmdProducts(ctx context.Context, a *app, args []string) error {
	const usage = "products [-search ..] [-category ..] [-min ..] [-max ..] [-sort ..] [-seller ..] [-limit n] [-page n]"
	fs := flags("products")
	var q catalog.ProductQuery
	fs.StringVar(&q.Search, "search", "", "Text to search in titles and descriptions")
	fs.StringVar(&q.Category, "category", "", "Category id")
	fs.StringVar(&q.MinPrice, "min", "", "Minimum price")
	fs.StringVar(&q.MaxPrice, "max", "", "Maximum price")
	fs.StringVar(&q.Sort, "sort", "", "newest, price_asc, price_desc or rating")
	fs.StringVar(&q.Seller, "seller", "", "Seller id")
	fs.IntVar(&q.Limit, "limit", 0, "Page size")
	fs.IntVar(&q.Page, "page", 0, "Page number")
	if err := parse(fs, usage, args); err != nil {
		return err
	}

	products, err := a.catalog.Browse(ctx, q)
	if err != nil {
		return err
	}
	return a.showProducts(products)
}

func cmdProduct(ctx context.Context, a *app, args []string) error {
	const usage = "product <product-id>"
	id, err := idArg(args, 0, usage, "product id")
	if err != nil {
		return err
	}

	d, err := a.catalog.Detail(ctx, id)
	if err != nil {
		return err
	}
	return a.out.render(d, func(w io.Writer) {
		p := d.Product
		row(w, "ID", p.ID)
		row(w, "TITLE", p.Title)
		row(w, "PRICE", p.Price.StringFixed(2))
		row(w, "STOCK", p.Stock)
		row(w, "CATEGORY", orDash(p.CategoryName))
		row(w, "SELLER", orDash(p.SellerName))
		row(w, "STATUS", orDash(string(p.Status)))
		if p.AverageRating != nil {
			row(w, "RATING", fmt.Sprintf("%.1f", *p.AverageRating))
		}
		row(w, "DESCRIPTION", orDash(p.Description))
		row(w, "CAN REVIEW", d.CanReview)
		if len(d.Reviews) > 0 {
			row(w)
			writeReviews(w, d.Reviews)
		}
	})
}

func cmdCategories(ctx context.Context, a *app, _ []string) error {
	categories, err := a.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	return a.showCategories(categories)
}

func cmdReviews(ctx context.Context, a *app, args []string) error {
	const usage = "reviews <product-id>"
	id, err := idArg(args, 0, usage, "product id")
	if err != nil {
		return err
	}

	reviews, err := a.catalog.Reviews(ctx, id)
	if err != nil {
		return err
	}
	return a.out.render(reviews, func(w io.Writer) { writeReviews(w, reviews) })
}

func cmdReview(ctx context.Context, a *app, args []string) error {
	const usage = "review -rating 1..5 -comment <text> <product-id>"
	fs := flags("review")
	rating := fs.Int("rating", 0, "Rating from 1 to 5")
	comment := fs.String("comment", "", "Review text")
	if err := parse(fs, usage, args); err != nil {
		return err
	}
	id, err := idArg(fs.Args(), 0, usage, "product id")
	if err != nil {
		return err
	}

	review, err := a.catalog.AddReview(ctx, id, *rating, *comment)
	if err != nil {
		return err
	}
	return a.out.render(review, func(w io.Writer) { writeReviews(w, []catalog.Review{review}) })
}

// cmdSeller manages the signed-in seller's own listings.
func cmdSeller(ctx context.Context, a *app, args []string) error {
	const usage = "seller <dashboard|products|create|update|delete> ..."
	sub, rest := subcommand(args, "products")
	switch sub {
	case "dashboard":
		return a.sellerDashboard(ctx)

	case "products":
		products, err := a.catalog.MyProducts(ctx)
		if err != nil {
			return err
		}
		return a.showProducts(products)

	case "create":
		const createUsage = "seller create -title .. -description .. -price .. -stock n -category <id> [-image <file>]"
		in, image, err := productForm(createUsage, rest)
		if err != nil {
			return err
		}
		if image != nil {
			defer closeImage(image)
		}
		product, err := a.catalog.CreateProduct(ctx, in, image)
		if err != nil {
			return err
		}
		return a.showProducts([]catalog.Product{product})

	case "update":
		const updateUsage = "seller update -title .. -description .. -price .. -stock n -category <id> [-status ..] [-image <file>] <product-id>"
		fs := productFlags("seller update")
		if err := parse(fs.set, updateUsage, rest); err != nil {
			return err
		}
		id, err := idArg(fs.set.Args(), 0, updateUsage, "product id")
		if err != nil {
			return err
		}
		in, image, err := fs.build(updateUsage)
		if err != nil {
			return err
		}
		if image != nil {
			defer closeImage(image)
		}
		product, err := a.catalog.UpdateProduct(ctx, id, in, image)
		if err != nil {
			return err
		}
		return a.showProducts([]catalog.Product{product})

	case "delete":
		id, err := idArg(rest, 0, "seller delete <product-id>", "product id")
		if err != nil {
			return err
		}
		return a.catalog.DeleteProduct(ctx, id)
	}
	return usagef(usage, "unknown seller command %q", sub)
}

func (a *app) sellerDashboard(ctx context.Context) error {
	d, err := a.dashboard.SellerDashboard(ctx)
	if err != nil {
		return err
	}
	return a.out.render(d, func(w io.Writer) {
		row(w, "PRODUCTS", d.TotalProducts)
		row(w, "REVENUE", d.TotalRevenue.StringFixed(2))
		row(w, "SALES", d.TotalSales)
		row(w, "PENDING", d.PendingOrders)
		if len(d.RecentOrders) > 0 {
			row(w)
			row(w, "ORDER", "BUYER", "TOTAL", "STATUS")
			for _, o := range d.RecentOrders {
				row(w, o.ID, orDash(o.BuyerName), o.TotalAmount.StringFixed(2), o.Status)
			}
		}
	})
}

// productFormFlags holds the flags shared by product create and update.
type productFormFlags struct {
	set         *flag.FlagSet
	title       *string
	description *string
	price       *string
	stock       *int
	category    *string
	status      *string
	image       *string
}

func productFlags(name string) *productFormFlags {
	fs := flags(name)
	return &productFormFlags{
		set:         fs,
		title:       fs.String("title", "", "Product title"),
		description: fs.String("description", "", "Product description"),
		price:       fs.String("price", "", "Price, e.g. 199.90"),
		stock:       fs.Int("stock", 0, "Units in stock"),
		category:    fs.String("category", "", "Category id"),
		status:      fs.String("status", "", "active or inactive"),
		image:       fs.String("image", "", "Image file to upload"),
	}
}

// build turns the parsed flags into an input and an optional image part.
// The caller closes the image.
func (f *productFormFlags) build(usage string) (catalog.ProductInput, *apiclient.FilePart, error) {
	var price decimal.Decimal
	if *f.price != "" {
		p, err := decimal.NewFromString(*f.price)
		if err != nil {
			return catalog.ProductInput{}, nil, usagef(usage, "invalid price %q", *f.price)
		}
		price = p
	}
	in := catalog.ProductInput{
		Title:       strings.TrimSpace(*f.title),
		Description: strings.TrimSpace(*f.description),
		Price:       price,
		Stock:       *f.stock,
		CategoryID:  shared.ID(*f.category),
		Status:      catalog.ProductStatus(*f.status),
	}

	if *f.image == "" {
		return in, nil, nil
	}
	file, err := os.Open(*f.image)
	if err != nil {
		return catalog.ProductInput{}, nil, &commandError{err: fmt.Errorf("opening image: %w", err)}
	}
	return in, &apiclient.FilePart{Field: "image", FileName: filepath.Base(*f.image), Content: file}, nil
}

func productForm(usage string, args []string) (catalog.ProductInput, *apiclient.FilePart, error) {
	f := productFlags("seller create")
	if err := parse(f.set, usage, args); err != nil {
		return catalog.ProductInput{}, nil, err
	}
	return f.build(usage)
}

func closeImage(part *apiclient.FilePart) {
	if c, ok := part.Content.(io.Closer); ok {
		_ = c.Close()
	}
}

func (a *app) showProducts(products []catalog.Product) error {
	return a.out.render(products, func(w io.Writer) {
		row(w, "ID", "TITLE", "PRICE", "STOCK", "CATEGORY", "SELLER", "STATUS")
		for _, p := range products {
			row(w, p.ID, p.Title, p.Price.StringFixed(2), p.Stock, orDash(p.CategoryName), orDash(p.SellerName), orDash(string(p.Status)))
		}
	})
}

func (a *app) showCategories(categories []catalog.Category) error {
	return a.out.render(categories, func(w io.Writer) {
		row(w, "ID", "NAME", "PRODUCTS", "DESCRIPTION")
		for _, c := range categories {
			row(w, c.ID, c.Name, c.ProductCount, orDash(c.Description))
		}
	})
}

func writeReviews(w io.Writer, reviews []catalog.Review) {
	row(w, "RATING", "REVIEWER", "DATE", "COMMENT")
	for _, r := range reviews {
		date := "-"
		if r.CreatedAt != nil {
			date = r.CreatedAt.Format("2006-01-02")
		}
		row(w, strings.Repeat("★", r.Rating), orDash(r.ReviewerName), date, r.Comment)
	}
}
