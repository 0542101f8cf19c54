package model

// OrderRecord is the platform-side order the submission attaches to. The
// commerce platform owns it; we read it fresh per request and never cache.
type OrderRecord struct {
	ID           int64
	Number       string
	CustomerName string
}
