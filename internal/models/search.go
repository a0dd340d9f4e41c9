package models

// SearchParams captures the normalized search inputs passed to source adapters.
type SearchParams struct {
	Query    string
	Location string
	Page     int
	Limit    int
}
