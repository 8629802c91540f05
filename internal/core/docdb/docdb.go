// Package docdb defines the document database interface.
package docdb

import (
	"context"
)

// Collection defines the document collection operations the service performs.
type Collection interface {
	// InsertOne inserts a single document and returns its id.
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
}
