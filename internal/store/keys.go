package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	KeyUsers           = "users"
	KeyCurrentUser     = "currentUser"
	KeyAdminUser       = "adminUser"
	KeyProducts        = "products"
	KeyCategories      = "categories"
	KeyOrders          = "orders"
	KeyContactMessages = "contactMessages"
	KeyLastOrderID     = "lastOrderId"
	KeyGuestCart       = "grocery_cart_guest"

	PrefixCart         = "grocery_cart_"
	PrefixLegacyOrders = "orders_"
)

// CartKey returns the cart document key of a shopper.
func CartKey(userID int64) string {
	return PrefixCart + strconv.FormatInt(userID, 10)
}

// LegacyOrdersKey is the per-user order copy written by older clients.
func LegacyOrdersKey(userID int64) string {
	return PrefixLegacyOrders + strconv.FormatInt(userID, 10)
}

// Family groups per-user keys for metrics and logs.
func Family(key string) string {
	switch {
	case strings.HasPrefix(key, PrefixCart):
		return "cart"
	case strings.HasPrefix(key, PrefixLegacyOrders):
		return "orders_legacy"
	default:
		return key
	}
}

var fixedKeys = []string{
	KeyUsers, KeyCurrentUser, KeyAdminUser, KeyProducts, KeyCategories,
	KeyOrders, KeyContactMessages, KeyLastOrderID,
}

// Reset removes every document owned by the grocery data layer.
func Reset(ctx context.Context, s Store) error {
	keys := append([]string(nil), fixedKeys...)
	for _, prefix := range []string{PrefixCart, PrefixLegacyOrders} {
		found, err := s.Keys(ctx, prefix)
		if err != nil {
			return fmt.Errorf("reset: list %s: %w", prefix, err)
		}
		keys = append(keys, found...)
	}

	if bd, ok := s.(BulkDeleter); ok {
		if err := bd.DeleteMany(ctx, keys); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		return nil
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return fmt.Errorf("reset: delete %s: %w", k, err)
		}
	}
	return nil
}
