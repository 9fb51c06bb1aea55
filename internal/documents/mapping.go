package documents

import (
	"encoding/json"
	"net/url"

	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("sha256", "SHA256").
	Project("source", "Source").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("doc_type", "DocType").
	Project("page_count", "PageCount").
	Project("fields", "Fields").
	Project("signal_id", "SignalID").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Filename uses case-insensitive contains matching; the rest match exactly.
type Filters struct {
	Source      *string `json:"source,omitempty"`
	DocType     *string `json:"doc_type,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
	SHA256      *string `json:"sha256,omitempty"`
	Filename    *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Source", f.Source).
		WhereEquals("DocType", f.DocType).
		WhereEquals("ContentType", f.ContentType).
		WhereEquals("SHA256", f.SHA256).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("source"); s != "" {
		f.Source = &s
	}
	if dt := values.Get("doc_type"); dt != "" {
		f.DocType = &dt
	}
	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}
	if h := values.Get("sha256"); h != "" {
		f.SHA256 = &h
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d      Document
		fields []byte
	)
	err := s.Scan(
		&d.ID,
		&d.SHA256,
		&d.Source,
		&d.Filename,
		&d.ContentType,
		&d.DocType,
		&d.PageCount,
		&fields,
		&d.SignalID,
		&d.CreatedAt,
	)
	if len(fields) > 0 {
		d.Fields = json.RawMessage(fields)
	}
	return d, err
}
