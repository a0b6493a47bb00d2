package pricing

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const orderIDPrefix = "ORD-"

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var now = time.Now

// ItemKey derives the identity of a cart line. Products without a variant are
// keyed by their id alone.
func ItemKey(productID, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + "-" + variantID
}

// GenerateOrderID returns an id that is unique with high probability within
// one process: ORD-<base36 millis>-<5 random base36 chars>, uppercased.
// Global uniqueness is left to whoever stores the order.
func GenerateOrderID() string {
	ts := strconv.FormatInt(now().UnixMilli(), 36)

	var suffix [5]byte
	for i := range suffix {
		suffix[i] = base36[rand.Intn(len(base36))]
	}

	return orderIDPrefix + strings.ToUpper(ts+"-"+string(suffix[:]))
}
