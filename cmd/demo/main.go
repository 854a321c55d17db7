// Command demo drives the cart client against a running cart API: it signs
// in, fetches the cart, bumps the first line's quantity and prints the
// resulting snapshot and notifications.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"

	"cartflow/pkg/cart"
	"cartflow/pkg/cart/httpsync"
	"cartflow/pkg/logger"
)

func main() {
	base := os.Getenv("CART_API_URL")
	if base == "" {
		base = "https://localhost:8443"
	}
	log := logger.New(os.Stdout, logger.LevelInfo, "cartflow-demo", nil)
	ctx := context.Background()

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Error(ctx, "cookie jar", "error", err)
		os.Exit(1)
	}
	hc := &http.Client{Jar: jar}

	creds, _ := json.Marshal(map[string]string{"username": "demo", "password": "demo"})
	resp, err := hc.Post(base+"/login", "application/json", bytes.NewReader(creds))
	if err != nil {
		log.Error(ctx, "login", "error", err)
		os.Exit(1)
	}
	resp.Body.Close()

	ctrl := cart.NewController(httpsync.New(base, hc), log)
	if err := ctrl.Refresh(ctx); err != nil {
		log.Error(ctx, "refresh", "error", err)
		os.Exit(1)
	}

	snap := ctrl.Snapshot()
	if len(snap.Items) > 0 {
		first := snap.Items[0]
		if err := ctrl.UpdateQuantity(ctx, first.ID, first.Quantity+1); err != nil {
			log.Warn(ctx, "update quantity", "id", first.ID, "error", err)
		}
		snap = ctrl.Snapshot()
	}

	fmt.Printf("cart: %d items, total %d\n", snap.TotalItems, snap.TotalPrice)
	for _, li := range snap.Items {
		fmt.Printf("  %-20s x%d  %d\n", li.Product.Name, li.Quantity, li.Subtotal())
	}
	for _, n := range ctrl.Notifications() {
		fmt.Printf("note [%s] %s\n", n.Kind, n.Message)
	}
}
