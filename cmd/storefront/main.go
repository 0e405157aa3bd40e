package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/gate"
	"storefront/internal/infra/store"
	"storefront/internal/repository"
	"storefront/internal/restclient"
	"storefront/internal/usecase"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// usecase一式をまとめたCLIの実行環境
type app struct {
	session  *usecase.SessionUsecase
	cart     *usecase.CartUsecase
	wishlist *usecase.WishlistUsecase
	checkout *usecase.CheckoutUsecase
	catalog  *api.CatalogAPI
	log      *slog.Logger
}

func main() {
	//.envは無くても動く
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	//ローカルキャッシュ
	db, err := store.Open(cfg.StatePath)
	if err != nil {
		log.Error("local store open failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var sessionStore repository.SessionStore = db.Session()
	if cfg.KeyringService != "" {
		sessionStore = store.NewKeyringSessionStore(sessionStore, cfg.KeyringService, log)
	}

	//全API呼び出しが通る共通クライアント
	client, err := restclient.New(cfg.APIBaseURL, sessionStore, restclient.Options{
		HeaderLimit: cfg.HeaderLimit,
		CookieLimit: cfg.CookieLimit,
		Retry:       restclient.RetryPolicy{MaxRetries: cfg.MaxRetries},
		Logger:      log,
	})
	if err != nil {
		log.Error("client init failed", "err", err)
		os.Exit(1)
	}

	clock := &realClock{}
	idGen := &uuidGenerator{}

	a := &app{
		session:  usecase.NewSessionUsecase(sessionStore, api.NewUsersAPI(client), clock, log),
		cart:     usecase.NewCartUsecase(db, sessionStore, api.NewCartAPI(client), idGen, clock, log),
		wishlist: usecase.NewWishlistUsecase(db.Wishlist(), sessionStore, api.NewWishlistAPI(client), clock, log),
		checkout: usecase.NewCheckoutUsecase(db, api.NewOrdersAPI(client), log),
		catalog:  api.NewCatalogAPI(client),
		log:      log,
	}

	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: storefront <login|logout|whoami|products|product|cart|wishlist|checkout|orders>")
	}

	switch args[0] {
	case "login":
		if len(args) != 3 {
			return errors.New("usage: storefront login <email> <password>")
		}
		sess, err := a.session.Login(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", sess.User.Email, sess.User.Role)
		//ログイン直後にローカルとサーバーのカートを突合する
		if _, err := a.cart.Reconcile(ctx); err != nil {
			a.log.Warn("cart reconcile after login failed", "err", err)
		}
		if _, err := a.wishlist.Reconcile(ctx); err != nil {
			a.log.Warn("wishlist reconcile after login failed", "err", err)
		}
		return nil

	case "logout":
		return a.session.Logout(ctx)

	case "whoami":
		sess, err := a.session.Revalidate(ctx)
		if err != nil {
			return err
		}
		if !sess.Authenticated() {
			fmt.Println("guest")
			return nil
		}
		fmt.Printf("%s (%s)\n", sess.User.Email, sess.User.Role)
		return nil

	case "products":
		q := ""
		if len(args) > 1 {
			q = args[1]
		}
		out, err := a.catalog.ListProducts(ctx, api.ListProductsQuery{Page: 1, Limit: 20, Q: q})
		if err != nil {
			return err
		}
		for _, p := range out.Items {
			fmt.Printf("%s\t%s\t%.2f\t(stock %d)\n", p.ID, p.Name, p.Price, p.Stock)
		}
		fmt.Printf("total: %d\n", out.Total)
		return nil

	case "product":
		if len(args) != 2 {
			return errors.New("usage: storefront product <product-id>")
		}
		p, err := a.catalog.GetProduct(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\n", p.Name, p.Description)
		fmt.Printf("price: %.2f\tstock: %d\tcategory: %s\n", p.Price, p.Stock, p.CategoryID)
		return nil

	case "cart":
		return a.runCart(ctx, args[1:])

	case "wishlist":
		return a.runWishlist(ctx, args[1:])

	case "checkout":
		return a.runCheckout(ctx, args[1:])

	case "orders":
		orders, err := a.checkout.History(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Printf("%s\t%s\t%.2f\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.Total, o.Status)
		}
		return nil

	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *app) runCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "show":
		lines, err := a.cart.Reconcile(ctx)
		if err != nil {
			return err
		}
		printCart(lines)
		return nil

	case "add":
		if len(args) != 3 {
			return errors.New("usage: storefront cart add <product-id> <quantity>")
		}
		qty, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity: %s", args[2])
		}
		p, err := a.catalog.GetProduct(ctx, args[1])
		if err != nil {
			if restclient.Degradable(err) {
				//オフラインでも追加は通す。商品詳細は後で突合される
				a.log.Warn("product lookup unavailable, adding with id only", "err", err)
				p = model.Product{ID: args[1]}
			} else {
				return err
			}
		}
		lines, err := a.cart.Add(ctx, p, qty)
		if err != nil {
			return err
		}
		printCart(lines)
		return nil

	case "update":
		if len(args) != 3 {
			return errors.New("usage: storefront cart update <product-id> <quantity>")
		}
		qty, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity: %s", args[2])
		}
		lines, err := a.cart.UpdateQuantity(ctx, args[1], qty)
		if err != nil {
			return err
		}
		printCart(lines)
		return nil

	case "remove":
		if len(args) != 2 {
			return errors.New("usage: storefront cart remove <product-id>")
		}
		lines, err := a.cart.Remove(ctx, args[1])
		if err != nil {
			return err
		}
		printCart(lines)
		return nil

	case "clear":
		return a.cart.Clear(ctx)

	case "sync":
		lines, err := a.cart.Reconcile(ctx)
		if err != nil {
			return err
		}
		printCart(lines)
		return nil

	default:
		return fmt.Errorf("unknown cart command: %s", args[0])
	}
}

func (a *app) runWishlist(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "show":
		entries, err := a.wishlist.Reconcile(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%.2f\n", e.ProductID, e.Name, e.Price)
		}
		return nil

	case "add":
		if len(args) != 2 {
			return errors.New("usage: storefront wishlist add <product-id>")
		}
		p, err := a.catalog.GetProduct(ctx, args[1])
		if err != nil {
			return err
		}
		_, err = a.wishlist.Add(ctx, p)
		return err

	case "remove":
		if len(args) != 2 {
			return errors.New("usage: storefront wishlist remove <product-id>")
		}
		_, err := a.wishlist.Remove(ctx, args[1])
		return err

	default:
		return fmt.Errorf("unknown wishlist command: %s", args[0])
	}
}

func (a *app) runCheckout(ctx context.Context, args []string) error {
	lines, err := a.cart.Lines(ctx)
	if err != nil {
		return err
	}

	//画面と同じゲート判定をCLIでも通す
	sess := a.session.Current(ctx)
	d := gate.Decide(gate.PathCheckout, sess, len(lines))
	if d.Action == gate.Redirect {
		if d.Warning != "" {
			fmt.Println(d.Warning)
		}
		fmt.Println("redirect:", d.Target)
		return nil
	}

	d = gate.Decide(gate.PathPayment, sess, len(lines))
	if d.Action == gate.Redirect {
		fmt.Println("login required before payment")
		return nil
	}

	address := ""
	coupon := ""
	if len(args) > 0 {
		address = args[0]
	}
	if len(args) > 1 {
		coupon = args[1]
	}

	order, err := a.checkout.PlaceOrder(ctx, usecase.PlaceOrderInput{Address: address, CouponCode: coupon})
	if err != nil {
		return err
	}
	fmt.Printf("order %s placed, total %.2f\n", order.ID, order.Total)
	return nil
}

func printCart(lines []model.CartLine) {
	var total float64
	for _, l := range lines {
		marker := ""
		if l.Dirty {
			marker = " (unsynced)"
		}
		fmt.Printf("%s\t%s\tx%d\t%.2f%s\n", l.ProductID, l.Name, l.Quantity, l.UnitPrice(), marker)
		total += l.UnitPrice() * float64(l.Quantity)
	}
	fmt.Printf("total: %.2f\n", total)
}
