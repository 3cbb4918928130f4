// Package idgen issues human-facing document numbers (ORD-…, PO-…, TCK-…).
// Row primary keys stay UUIDs; these numbers are what operators read out on
// the phone or print on a packing slip.
package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/juju/errors"
)

const (
	PrefixOrder         = "ORD"
	PrefixPurchaseOrder = "PO"
	PrefixTicket        = "TCK"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the snowflake node for this process. Nodes must be unique per
// running instance.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return errors.Annotatef(err, "snowflake node %d", nodeID)
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// Next returns "<prefix>-<snowflake>". Without Init it falls back to node 0.
func Next(prefix string) string {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(0)
	}
	n := node
	mu.Unlock()
	return prefix + "-" + n.Generate().String()
}
