// Package layout defines the on-disk/in-region byte shapes shared by the
// allocator and the manager: the region header, block descriptor and
// chunk header. Types and functions exported by this package are not
// thread safe; callers serialize access the way pmm.Manager does.
package layout
