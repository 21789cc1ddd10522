package world

import (
	"path/filepath"
	"reflect"
	"testing"

	"voxelfield/internal/voxel"
)

func testColumn() []voxel.Voxel {
	column := make([]voxel.Voxel, 24)
	for i := 0; i < 20; i++ {
		column[i] = voxel.Solid(voxel.MaterialGround)
	}
	column[20] = voxel.Solid(voxel.MaterialTrunk)
	for i := 21; i < 24; i++ {
		column[i] = voxel.Solid(voxel.MaterialCanopy)
	}
	return column
}

func TestDiskColumnStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunk.bin")

	storage, err := newDiskColumnStorage(path)
	if err != nil {
		t.Fatalf("newDiskColumnStorage: %v", err)
	}
	defer storage.Close()

	column := testColumn()
	if err := storage.SaveColumn(3, column); err != nil {
		t.Fatalf("SaveColumn: %v", err)
	}

	got, ok, err := storage.LoadColumn(3)
	if err != nil {
		t.Fatalf("LoadColumn: %v", err)
	}
	if !ok {
		t.Fatalf("column 3 not found")
	}
	if !reflect.DeepEqual(got, column) {
		t.Fatalf("column mismatch:\nwant %#v\n got %#v", column, got)
	}

	if _, ok, _ := storage.LoadColumn(4); ok {
		t.Fatalf("unsaved column must not exist")
	}
}

func TestDiskColumnStorageReplaysLogOnReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunk.bin")

	storage, err := newDiskColumnStorage(path)
	if err != nil {
		t.Fatalf("newDiskColumnStorage: %v", err)
	}

	first := testColumn()
	if err := storage.SaveColumn(7, first); err != nil {
		t.Fatalf("SaveColumn first: %v", err)
	}
	// Overwrite so the log holds two records for the same index.
	second := first[:5]
	if err := storage.SaveColumn(7, second); err != nil {
		t.Fatalf("SaveColumn second: %v", err)
	}
	if err := storage.SaveColumn(8, first); err != nil {
		t.Fatalf("SaveColumn other index: %v", err)
	}
	if err := storage.Delete(8); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := storage.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := newDiskColumnStorage(path)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.LoadColumn(7)
	if err != nil {
		t.Fatalf("LoadColumn: %v", err)
	}
	if !ok {
		t.Fatalf("expected column 7 after reopen")
	}
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("last record must win: got %#v", got)
	}
	if _, ok, _ := reopened.LoadColumn(8); ok {
		t.Fatalf("deleted column resurrected by replay")
	}
}

func TestDiskColumnStorageForEachSortsByIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunk.bin")

	storage, err := newDiskColumnStorage(path)
	if err != nil {
		t.Fatalf("newDiskColumnStorage: %v", err)
	}
	defer storage.Close()

	column := testColumn()
	for _, idx := range []int{9, 2, 5} {
		if err := storage.SaveColumn(idx, column); err != nil {
			t.Fatalf("SaveColumn %d: %v", idx, err)
		}
	}

	var order []int
	if err := storage.ForEach(func(index int, _ []voxel.Voxel) bool {
		order = append(order, index)
		return true
	}); err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if !reflect.DeepEqual(order, []int{2, 5, 9}) {
		t.Fatalf("expected sorted iteration, got %v", order)
	}
}

func TestDiskStorageProviderCreatesChunkDirectories(t *testing.T) {
	dir := t.TempDir()
	provider := NewDiskStorageProvider(dir)

	key := ChunkCoord{X: -2, Y: 1, Z: 3}
	storage, err := provider.NewStorage(key, 32)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	defer storage.Close()

	if err := storage.SaveColumn(0, testColumn()); err != nil {
		t.Fatalf("SaveColumn: %v", err)
	}

	wantPath := filepath.Join(dir, "-2", "1", "chunk_3.bin")
	if provider.chunkPath(key) != wantPath {
		t.Fatalf("unexpected chunk path %s", provider.chunkPath(key))
	}
}
