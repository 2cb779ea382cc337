package relational

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// digest128 produces the deterministic 128-bit content hash used for
// primary-key and structural row identities. The exact encoding only
// matters as a stability contract: same input, same id, forever.
func digest128(v string) string {
	sum := md5.Sum([]byte(v))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// uniqID returns a random identifier for root rows that carry neither a
// caller-supplied id nor a primary key.
func uniqID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// childRowHash derives a structural row identity from the nearest emitted
// ancestor's id, the child's table identity and its position in the
// generating array. Any change to one of the three changes the result.
func childRowHash(parentID, table string, pos int) string {
	return digest128(fmt.Sprintf("%s_%s_%d", parentID, table, pos))
}

// stringForm renders a scalar value the way it participates in key
// hashing.
func stringForm(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
