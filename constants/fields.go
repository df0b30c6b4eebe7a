package constants

// DefaultListingFields is the field list used to shape the structured
// listing the model returns. Passed through to the schema builder so
// callers can substitute their own set.
var DefaultListingFields = []string{
	"Product Name",
	"Description",
	"Usage Instructions",
}

// ListingsKey is the name of the array field wrapping listing records in
// the container schema.
const ListingsKey = "listings"
