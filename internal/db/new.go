package db

// New opens a store for the given backend and DSN and installs it as the
// package-level store behind the package helpers. Callers that need several
// independent stores should use NewStoreFromDSN directly.
func New(dbType, dsn string) (Store, error) {
	s, err := NewStoreFromDSN(dbType, dsn)
	if err == nil {
		store = s
	}
	return s, err
}
