// Package market wraps the auction marketplace endpoints on top of an
// authenticated [api.Client].
//
// Each service is a thin typed layer: it validates inputs that the backend
// would reject anyway, so bad calls fail before touching the network, and
// returns backend failures as *api.Error unchanged.
//
//	store, _ := goSession.New().WithBaseURL(base).Build()
//	m := market.New(store.API())
//	order, err := m.Orders.Get(ctx, 1001)
package market
