// file: service/cache.go

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ICacheClient is the subset of the Redis client the balance cache needs.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// storeBalanceScript writes "<version>:<balance>" unless the key already holds an
// entry with the same or a newer account version. ARGV: version, balance, ttl in ms.
const storeBalanceScript = `
local current = redis.call('GET', KEYS[1])
if current then
  local version = tonumber(string.match(current, '^(%d+):'))
  if version and version >= tonumber(ARGV[1]) then
    return 0
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1] .. ':' .. ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1] .. ':' .. ARGV[2])
end
return 1
`

func balanceCacheKey(userID int64) string {
	return fmt.Sprintf("balance:%d", userID)
}

// parseCachedBalance reads an entry written by storeBalanceScript.
func parseCachedBalance(entry string) (decimal.Decimal, bool) {
	versionPart, balancePart, found := strings.Cut(entry, ":")
	if !found {
		return decimal.Zero, false
	}
	if _, err := strconv.ParseInt(versionPart, 10, 64); err != nil {
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(balancePart)
	if err != nil {
		return decimal.Zero, false
	}
	return balance, true
}
