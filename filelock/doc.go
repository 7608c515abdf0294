// Package filelock gives pmm.Manager's Save and LoadFromFile a scoped
// cross-process critical section around an image file, grounded on the
// same syscall.Flock technique the teacher's flock.RWMutex uses for
// bogn's index files — but shaped around what those two callers
// actually need: one exclusive section to write an image, one shared
// section to read one, each bounded by a single function call rather
// than a pair of Lock/Unlock calls the caller must remember to pair up.
//
// flock(2) locks are associated with the file's inode, so two calls
// from goroutines in the same process serialize against each other the
// same as two calls from different processes would; there is no
// separate in-process mutex to maintain.
package filelock
