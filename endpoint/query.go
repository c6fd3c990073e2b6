package endpoint

import (
	"net/url"

	"github.com/gorilla/schema"
)

var queryEncoder = schema.NewEncoder()

// EncodeQuery converts a struct with `schema` tags into query parameters.
func EncodeQuery(params any) (url.Values, error) {
	query := url.Values{}
	if err := queryEncoder.Encode(params, query); err != nil {
		return nil, err
	}
	return query, nil
}
