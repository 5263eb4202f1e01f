package ids

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	nodeID := int64(0)
	if v, err := strconv.ParseInt(os.Getenv("APP_NODE_ID"), 10, 64); err == nil {
		nodeID = v
	}

	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		// Node IDs outside 0..1023 are a deployment mistake, not a runtime
		// condition worth limping through.
		panic("ids: invalid APP_NODE_ID: " + err.Error())
	}
	node = n
}

// New returns a time-ordered identifier with the given prefix, e.g.
// "sess-1812345678901234567". Identifiers generated later sort later.
func New(prefix string) string {
	return prefix + "-" + node.Generate().String()
}

// Timestamp returns a compact UTC microsecond timestamp string, e.g.
// "20250101T123456012345". Used where identifiers need to be readable
// as capture times.
func Timestamp() string {
	t := time.Now().UTC()
	return fmt.Sprintf("%s%06d", t.Format("20060102T150405"), t.Nanosecond()/1000)
}
