package transact

// Changeset is the frozen instruction stream of one committed write
// transaction: an immutable byte sequence plus the commit version the
// host assigned to it. An empty Data is a valid zero-op changeset.
type Changeset struct {
	Version uint64
	Data    []byte
}

// Empty reports whether the changeset contains no instructions.
func (c *Changeset) Empty() bool { return len(c.Data) == 0 }

// Size returns the encoded length in bytes.
func (c *Changeset) Size() int { return len(c.Data) }
