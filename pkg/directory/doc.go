// Package directory defines the user-lookup capability the notification
// pipeline consults for recipients and their preferences.
//
// The Lookup interface is the integration point: hosts back it with whatever
// holds their user base. The package ships a map-backed Memory implementation
// and a Cached decorator that puts an expiring cache in front of any Lookup,
// with misses cached separately under a shorter TTL so an unknown identifier
// is never remembered for long.
//
// # Usage
//
//	users, err := directory.NewCached(hostLookup,
//	    directory.WithTTL(5*time.Minute),
//	    directory.WithNegativeTTL(30*time.Second),
//	)
//
// All lookups return deep copies; callers can mutate the result freely.
package directory
