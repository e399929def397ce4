package cache

// BoltDB bucket names
const (
	BucketRuns = "runs" // {run id, big-endian} -> RunRecord
	BucketMeta = "meta" // schema_version

	// Meta keys
	KeySchemaVersion = "schema_version"

	// Store categories
	CategoryPosts = "posts"
)

// AllBuckets returns all bucket names for initialization
func AllBuckets() []string {
	return []string{
		BucketRuns,
		BucketMeta,
	}
}
