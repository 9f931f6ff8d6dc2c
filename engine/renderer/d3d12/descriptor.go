package d3d12

import (
	"fmt"

	"github.com/google/uuid"
)

/**
 * @brief A single checked-out slot of a staging heap. The pool it came from is
 * referenced by ID only; the pool owns the slot storage.
 */
type StagingDescriptor struct {
	/** @brief The owning pool. uuid.Nil means the descriptor is unassigned. */
	PoolID uuid.UUID
	/** @brief Index of the heap inside the owning pool. */
	HeapIndex int
	/** @brief Slot index inside the heap. */
	Index int
	/** @brief CPU address of the slot. */
	CPUHandle CPUDescriptorHandle
}

// IsValid reports whether d refers to a slot of some pool.
func (d StagingDescriptor) IsValid() bool {
	return d.PoolID != uuid.Nil
}

func (d StagingDescriptor) String() string {
	if !d.IsValid() {
		return "StagingDescriptor(unassigned)"
	}
	return fmt.Sprintf("StagingDescriptor(pool=%s heap=%d index=%d cpu=%#x)", d.PoolID, d.HeapIndex, d.Index, d.CPUHandle.Ptr)
}
