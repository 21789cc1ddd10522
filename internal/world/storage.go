package world

import (
	"sync"

	"voxelfield/internal/voxel"
)

// ColumnStorage provides persistent storage for a chunk's classified columns.
// Columns are indexed by localZ*edge+localX and store voxels bottom-up
// relative to the chunk's minimum Y, trailing air trimmed.
type ColumnStorage interface {
	LoadColumn(index int) ([]voxel.Voxel, bool, error)
	SaveColumn(index int, column []voxel.Voxel) error
	Delete(index int) error
	ForEach(fn func(index int, column []voxel.Voxel) bool) error
	Close() error
}

// StorageProvider creates column storage instances for chunks.
type StorageProvider interface {
	NewStorage(key ChunkCoord, edge int) (ColumnStorage, error)
}

var (
	storageProvider StorageProvider = NewMemoryStorageProvider()
	storageMu       sync.RWMutex
)

// SetStorageProvider overrides the global storage provider used for new chunks.
func SetStorageProvider(provider StorageProvider) {
	storageMu.Lock()
	storageProvider = provider
	storageMu.Unlock()
}

func getStorageProvider() StorageProvider {
	storageMu.RLock()
	provider := storageProvider
	storageMu.RUnlock()
	return provider
}
