package e2e

import (
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"storefront/internal/api"
	"storefront/internal/infra/store"
	"storefront/internal/mockapi"
	"storefront/internal/restclient"
	"storefront/internal/usecase"
)

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// クライアント一式をインプロセスのモックAPIに張った状態で返す。
type harness struct {
	mock   *mockapi.Server
	srvURL *url.URL

	store  *store.SQLiteStore
	client *restclient.Client

	sessions *usecase.SessionUsecase
	carts    *usecase.CartUsecase
	wishes   *usecase.WishlistUsecase
	checkout *usecase.CheckoutUsecase

	catalog *api.CatalogAPI
	cartAPI *api.CartAPI
	admin   *api.AdminAPI
}

func newHarness(t *testing.T, opt mockapi.Options) *harness {
	t.Helper()

	m := mockapi.New(opt)
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	srvURL, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse failed: %v", err)
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	c, err := restclient.New(srv.URL+"/api", st.Session(), restclient.Options{})
	if err != nil {
		t.Fatalf("restclient.New failed: %v", err)
	}

	usersAPI := api.NewUsersAPI(c)
	cartAPI := api.NewCartAPI(c)
	wishAPI := api.NewWishlistAPI(c)
	ordersAPI := api.NewOrdersAPI(c)

	clock := systemClock{}
	return &harness{
		mock:     m,
		srvURL:   srvURL,
		store:    st,
		client:   c,
		sessions: usecase.NewSessionUsecase(st.Session(), usersAPI, clock, nil),
		carts:    usecase.NewCartUsecase(st, st.Session(), cartAPI, uuidGen{}, clock, nil),
		wishes:   usecase.NewWishlistUsecase(st.Wishlist(), st.Session(), wishAPI, clock, nil),
		checkout: usecase.NewCheckoutUsecase(st, ordersAPI, nil),
		catalog:  api.NewCatalogAPI(c),
		cartAPI:  cartAPI,
		admin:    api.NewAdminAPI(c),
	}
}
