// Package alloc implements the free-list allocator that services
// allocate/deallocate/reallocate requests against a region's dynamic
// area. It knows nothing about host pointers, singletons or locking —
// those are the pmm.Manager's job, the same split the teacher draws
// between its malloc package (pool/free-list bookkeeping) and the
// package that binds an arena to application state.
//
// Functions exported by this package are not thread safe; callers
// serialize access the way pmm.Manager does.
package alloc
