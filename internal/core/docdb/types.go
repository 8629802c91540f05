package docdb

// Type represents the type of document database.
type Type string

const (
	// TypeNone disables persistence; events are discarded.
	TypeNone Type = "none"
	// TypeMongoDB represents a MongoDB database.
	TypeMongoDB Type = "mongodb"
)
