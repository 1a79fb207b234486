// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/youssefawwad88/RealEstate/internal/deal"
)

// FindRecord finds the first record whose site_name equals name.
// Returns nil if no record matches.
func FindRecord(records []deal.Record, name string) deal.Record {
	for _, r := range records {
		if site, ok := r.String(deal.FieldSiteName); ok && site == name {
			return r
		}
	}
	return nil
}

// SiteNames lists the site_name of every record, "" where it is missing.
func SiteNames(records []deal.Record) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i], _ = r.String(deal.FieldSiteName)
	}
	return names
}
