package domain

import "errors"

var (
	ErrSnapshotNotFound        = errors.New("snapshot_not_found")
	ErrMaximumSnapshotsReached = errors.New("maximum_snapshots_reached")
	ErrSnapshotBeingCreated    = errors.New("snapshot_being_created")
	ErrSnapshotBeingRestored   = errors.New("snapshot_being_restored")
	ErrSnapshotBeingDeleted    = errors.New("snapshot_being_deleted")
	ErrSnapshotNameNotUnique   = errors.New("snapshot_name_not_unique")
)
