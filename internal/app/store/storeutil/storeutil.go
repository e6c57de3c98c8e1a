// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Paginate returns *options.FindOptions with skip/limit given a 1-based page.
func Paginate(limit, page int64) *options.FindOptions {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	sk := (page - 1) * limit
	return options.Find().SetLimit(limit).SetSkip(sk)
}

// NewestFirst sorts a find by created_at descending, the default order for
// snippet listings.
func NewestFirst(opts *options.FindOptions) *options.FindOptions {
	if opts == nil {
		opts = options.Find()
	}
	return opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
}
