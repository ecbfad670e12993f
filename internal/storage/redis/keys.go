package redis

import "fmt"

// accountKey returns the Redis key holding one account as JSON
func accountKey(prefix, key string) string {
	return fmt.Sprintf("%s:account:%s", prefix, key)
}

// accountIndexKey returns the Redis key for the SET of known account keys
func accountIndexKey(prefix string) string {
	return fmt.Sprintf("%s:idx:accounts", prefix)
}
