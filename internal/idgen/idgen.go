package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the snowflake node for this process. Node ids must differ between
// instances sharing a store.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("idgen: %w", err)
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func current() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	return node
}

// NextID returns a time-ordered unique id for users.
func NextID() int64 {
	return current().Generate().Int64()
}

// OrderID returns an order reference such as ORD-1789123456789012480.
func OrderID() string {
	return "ORD-" + current().Generate().String()
}

// MessageID returns a random id for contact messages.
func MessageID() string {
	return uuid.NewString()
}
