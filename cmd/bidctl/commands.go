package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/market"
)

var errNotSignedIn = errors.New("not signed in")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":    cmdLogin,
	"logout":   cmdLogout,
	"whoami":   cmdWhoami,
	"restore":  cmdRestore,
	"nickname": cmdNickname,
	"order":    cmdOrder,
	"products": cmdProducts,
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("bidctl "+name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// signedIn restores the session and fails when it settles anonymous.
func (a *app) signedIn(ctx context.Context) (*goSession.User, error) {
	sess := a.store.Restore(ctx, route)
	if !sess.Authenticated() {
		return nil, errNotSignedIn
	}
	return sess.User, nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	email := fs.String("email", os.Getenv("BIDCTL_EMAIL"), "account email")
	password := fs.String("password", os.Getenv("BIDCTL_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.store.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s <%s> (%s)\n", user.Nickname, user.Email, user.Role)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	// Restore first so the backend call carries the access token.
	a.store.Restore(ctx, route)
	a.store.Logout(ctx)
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.signedIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Nickname, user.Email, user.Role)
	return nil
}

func cmdRestore(ctx context.Context, a *app, _ []string) error {
	a.store.Restore(ctx, route)
	info := a.store.Info()
	out := map[string]any{
		"state":    info.State.String(),
		"email":    info.Email,
		"role":     info.Role,
		"hasToken": info.HasToken,
	}
	if !info.TokenExpiresAt.IsZero() {
		out["tokenExpiresAt"] = info.TokenExpiresAt
	}
	return a.printJSON(out)
}

func cmdNickname(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bidctl nickname <new-nickname>")
	}
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}
	user, err := a.store.ChangeNickname(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "nickname is now %s\n", user.Nickname)
	return nil
}

func cmdOrder(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "order")
	ship := fs.String("ship", "", "update shipping as name|phone|zip|address|detail")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: bidctl order [-ship name|phone|zip|address|detail] <order-id>")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", fs.Arg(0))
	}
	if _, err := a.signedIn(ctx); err != nil {
		return err
	}

	var order market.Order
	if *ship != "" {
		info, err := parseShipping(*ship)
		if err != nil {
			return err
		}
		order, err = a.market.Orders.UpdateShippingInfo(ctx, id, info)
		if err != nil {
			return err
		}
	} else {
		order, err = a.market.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
	}
	return a.printJSON(order)
}

func parseShipping(s string) (market.ShippingInfo, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 5 {
		return market.ShippingInfo{}, errors.New("shipping must be name|phone|zip|address|detail")
	}
	return market.ShippingInfo{
		Name:          parts[0],
		PhoneNumber:   parts[1],
		ZipCode:       parts[2],
		Address:       parts[3],
		DetailAddress: parts[4],
	}, nil
}

func cmdProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "products")
	page := fs.Int("page", 0, "zero-based page")
	size := fs.Int("size", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Listing is public; restore only so a signed-in user's token rides along.
	a.store.Restore(ctx, route)
	res, err := a.market.Products.List(ctx, *page, *size)
	if err != nil {
		return err
	}
	return a.printJSON(res)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
