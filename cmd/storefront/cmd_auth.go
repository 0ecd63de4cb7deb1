package main

import (
	"context"
	"io"
	"os"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

func cmdLogin(ctx context.Context, a *app, args []string) error {
	const usage = "login -email <email> [-password <password>]"
	fs := flags("login")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password, defaults to $STOREFRONT_PASSWORD")
	if err := parse(fs, usage, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("STOREFRONT_PASSWORD")
	}

	if !a.auth.Login(ctx, *email, *password) {
		return errFailed
	}
	return a.showUser(a.auth.User())
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	const usage = "register -name <name> -email <email> -password <password> [-role buyer|seller]"
	fs := flags("register")
	var reg identity.Registration
	fs.StringVar(&reg.Name, "name", "", "Full name")
	fs.StringVar(&reg.Email, "email", "", "Account email")
	fs.StringVar(&reg.Password, "password", "", "Password, at least 6 characters")
	role := fs.String("role", string(identity.RoleBuyer), "buyer or seller")
	fs.StringVar(&reg.Phone, "phone", "", "Phone number")
	fs.StringVar(&reg.Address, "address", "", "Street address")
	fs.StringVar(&reg.City, "city", "", "City")
	fs.StringVar(&reg.Country, "country", "", "Country")
	if err := parse(fs, usage, args); err != nil {
		return err
	}
	reg.Role = identity.Role(*role)

	if !a.auth.Register(ctx, reg) {
		return errFailed
	}
	return a.showUser(a.auth.User())
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	a.auth.Logout(ctx)
	return nil
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	user := a.auth.User()
	if user == nil {
		a.notifier.Error(notify.MsgLoginRequired)
		return errFailed
	}
	return a.showUser(user)
}

func cmdForgotPassword(ctx context.Context, a *app, args []string) error {
	const usage = "forgot-password -email <email>"
	fs := flags("forgot-password")
	email := fs.String("email", "", "Account email")
	if err := parse(fs, usage, args); err != nil {
		return err
	}
	if !a.auth.ForgotPassword(ctx, *email) {
		return errFailed
	}
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	const usage = "profile [-name ..] [-email ..] [-phone ..] [-address ..] [-city ..] [-country ..]"
	fs := flags("profile")
	var in identity.ProfileUpdate
	fs.StringVar(&in.Name, "name", "", "Full name")
	fs.StringVar(&in.Email, "email", "", "Account email")
	fs.StringVar(&in.Phone, "phone", "", "Phone number")
	fs.StringVar(&in.Address, "address", "", "Street address")
	fs.StringVar(&in.City, "city", "", "City")
	fs.StringVar(&in.Country, "country", "", "Country")
	if err := parse(fs, usage, args); err != nil {
		return err
	}
	if in == (identity.ProfileUpdate{}) {
		return usagef(usage, "nothing to update")
	}

	if !a.auth.UpdateProfile(ctx, in) {
		return errFailed
	}
	return a.showUser(a.auth.User())
}

func cmdPassword(ctx context.Context, a *app, args []string) error {
	const usage = "password -current <pw> -new <pw> [-confirm <pw>]"
	fs := flags("password")
	var in identity.PasswordChange
	fs.StringVar(&in.CurrentPassword, "current", "", "Current password")
	fs.StringVar(&in.NewPassword, "new", "", "New password, at least 6 characters")
	fs.StringVar(&in.ConfirmPassword, "confirm", "", "New password again, defaults to -new")
	if err := parse(fs, usage, args); err != nil {
		return err
	}
	if in.ConfirmPassword == "" {
		in.ConfirmPassword = in.NewPassword
	}

	if !a.auth.ChangePassword(ctx, in) {
		return errFailed
	}
	return nil
}

func (a *app) showUser(u *identity.User) error {
	if u == nil {
		return nil
	}
	return a.out.render(u, func(w io.Writer) {
		row(w, "ID", u.ID)
		row(w, "NAME", orDash(u.Name))
		row(w, "EMAIL", orDash(u.Email))
		row(w, "ROLE", orDash(u.Role.String()))
		row(w, "STATUS", orDash(string(u.Status)))
		row(w, "PHONE", orDash(u.Phone))
		row(w, "ADDRESS", orDash(u.Address))
		row(w, "CITY", orDash(u.City))
		row(w, "COUNTRY", orDash(u.Country))
	})
}
