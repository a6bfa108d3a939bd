package event

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/store"
)

// TopicForKey maps a store key to the notification its change implies.
func TopicForKey(key string) (string, bool) {
	switch {
	case key == store.KeyUsers || key == store.KeyCurrentUser:
		return AuthStateChanged, true
	case key == store.KeyAdminUser:
		return AdminAuthStateChanged, true
	case key == store.KeyProducts:
		return ProductsUpdated, true
	case key == store.KeyCategories:
		return CategoriesUpdated, true
	case key == store.KeyOrders || strings.HasPrefix(key, store.PrefixLegacyOrders):
		return OrdersUpdated, true
	case strings.HasPrefix(key, store.PrefixCart):
		return CartUpdated, true
	default:
		return "", false
	}
}

// Bridge republishes writes made by other processes on the local bus.
type Bridge struct {
	bus *Bus
	log *zap.Logger
}

func NewBridge(bus *Bus, log *zap.Logger) *Bridge {
	return &Bridge{bus: bus, log: log}
}

// Run consumes the watcher's change feed until ctx is done or the feed closes.
func (br *Bridge) Run(ctx context.Context, w store.Watcher) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	own := w.Origin()
	br.log.Info("change bridge started", zap.String("origin", own))

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			if c.Origin == own {
				continue
			}
			topic, ok := TopicForKey(c.Key)
			if !ok {
				continue
			}
			br.log.Debug("remote change", zap.String("key", c.Key), zap.String("topic", topic))
			br.bus.Publish(Notification{Topic: topic, Key: c.Key, Remote: true})
		}
	}
}
