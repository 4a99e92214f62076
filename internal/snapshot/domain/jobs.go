package domain

// Job types owned by the snapshot lifecycle.
const (
	JobTypeCreate  = "snapshot.create"
	JobTypeRestore = "snapshot.restore"
	JobTypeDelete  = "snapshot.delete"
)
