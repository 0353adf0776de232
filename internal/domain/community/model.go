package community

// Community is a member association of the governing body. Only names on
// the normalizer's allowlist are ever persisted.
type Community struct {
	ID   int64
	Name string
}
