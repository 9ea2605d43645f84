// Package ttlcache provides a thread-safe generic key-value cache where
// every entry carries its own expiry deadline.
//
// Expired entries are removed lazily on read. Callers that need bounded
// memory for write-heavy workloads should invoke Cleanup periodically;
// the cache never schedules background work on its own.
//
//	cache := ttlcache.New[string, Notification]()
//	cache.Set("notif:42", n)                       // default TTL
//	cache.SetTTL("notif:43", n, 30*time.Second)    // explicit TTL
//
//	if v, ok := cache.Get("notif:42"); ok {
//	    // fresh value
//	}
package ttlcache
