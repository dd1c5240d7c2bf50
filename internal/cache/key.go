package cache

// KeyPrefix namespaces gateway objects in the shared cache store.
const KeyPrefix = "s3-object:"

// Key derives the cache key for a request path. The path is used verbatim,
// leading slash included: identical paths always map to identical keys and
// distinct paths to distinct keys, with no normalization of case, trailing
// slashes or query strings.
func Key(path string) string {
	return KeyPrefix + path
}
