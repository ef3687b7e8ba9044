package limits

// Memory safety limits to prevent unbounded growth and OOM

const (
	// MaxScanRows is the maximum number of rows that can be scanned into memory
	// This prevents OOM when querying very large datasets
	MaxScanRows = 100000

	// MaxQueryConditions is the maximum number of conditions a single builder accumulates
	MaxQueryConditions = 1000

	// MaxJoins is the maximum number of relation includes per builder
	MaxJoins = 50

	// MaxOrderByFields is the maximum number of ORDER BY fields
	MaxOrderByFields = 20

	// MaxInListSize caps the number of values bound to one IN (...) placeholder.
	// Rendering a longer list fails the query.
	MaxInListSize = 10000

	// MaxPredicateSize is the maximum size in bytes of a predicate source string
	MaxPredicateSize = 4 * 1024
)
