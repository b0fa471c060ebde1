package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu          sync.Mutex
	node        *snowflake.Node
	initErr     error
	initialized bool
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call creates the node; every call reports its outcome,
// so a failed first Init keeps failing.
func Init(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		node, initErr = snowflake.NewNode(nodeID)
		initialized = true
	}
	return initErr
}

// New generates a time-ordered generation ID. Init must have succeeded first.
func New() int64 {
	return node.Generate().Int64()
}

// Format renders an ID the way it is echoed to clients (X-Generation-Id).
func Format(id int64) string {
	return snowflake.ID(id).Base58()
}
