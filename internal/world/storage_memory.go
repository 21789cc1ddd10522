package world

import (
	"sync"

	"voxelfield/internal/voxel"
)

type memoryStorageProvider struct{}

// NewMemoryStorageProvider returns the default, non-persistent provider.
func NewMemoryStorageProvider() StorageProvider {
	return &memoryStorageProvider{}
}

func (p *memoryStorageProvider) NewStorage(key ChunkCoord, edge int) (ColumnStorage, error) {
	return &memoryColumnStorage{
		columns: make(map[int][]voxel.Voxel),
	}, nil
}

type memoryColumnStorage struct {
	mu      sync.RWMutex
	columns map[int][]voxel.Voxel
}

func (m *memoryColumnStorage) LoadColumn(index int) ([]voxel.Voxel, bool, error) {
	m.mu.RLock()
	column, ok := m.columns[index]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	dup := make([]voxel.Voxel, len(column))
	copy(dup, column)
	return dup, true, nil
}

func (m *memoryColumnStorage) SaveColumn(index int, column []voxel.Voxel) error {
	dup := make([]voxel.Voxel, len(column))
	copy(dup, column)
	m.mu.Lock()
	m.columns[index] = dup
	m.mu.Unlock()
	return nil
}

func (m *memoryColumnStorage) Delete(index int) error {
	m.mu.Lock()
	delete(m.columns, index)
	m.mu.Unlock()
	return nil
}

func (m *memoryColumnStorage) ForEach(fn func(index int, column []voxel.Voxel) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for idx, column := range m.columns {
		dup := make([]voxel.Voxel, len(column))
		copy(dup, column)
		if !fn(idx, dup) {
			break
		}
	}
	return nil
}

func (m *memoryColumnStorage) Close() error {
	return nil
}
