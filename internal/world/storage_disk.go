package world

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/klauspost/compress/zstd"

	"voxelfield/internal/voxel"
)

const (
	diskOpDelete byte = 0
	diskOpSet    byte = 1
)

// DiskStorageProvider persists chunk columns as per-chunk append-log files
// beneath basePath. Records are gob-encoded and zstd-compressed.
type DiskStorageProvider struct {
	basePath string
}

func NewDiskStorageProvider(basePath string) *DiskStorageProvider {
	return &DiskStorageProvider{basePath: basePath}
}

func (p *DiskStorageProvider) NewStorage(key ChunkCoord, edge int) (ColumnStorage, error) {
	path := p.chunkPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create chunk directory: %w", err)
	}
	return newDiskColumnStorage(path)
}

func (p *DiskStorageProvider) chunkPath(key ChunkCoord) string {
	dir := filepath.Join(p.basePath, strconv.Itoa(key.X), strconv.Itoa(key.Y))
	return filepath.Join(dir, fmt.Sprintf("chunk_%d.bin", key.Z))
}

type diskRecordMeta struct {
	offset int64
	size   uint32
}

// diskColumnStorage appends one record per mutation: a 9-byte header
// (op, uint32 column index, uint32 payload size) followed by the compressed
// payload. loadIndex replays the log so the last record per index wins.
type diskColumnStorage struct {
	file    *os.File
	mu      sync.RWMutex
	records map[int]diskRecordMeta
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func newDiskColumnStorage(path string) (*diskColumnStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open chunk file: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	storage := &diskColumnStorage{
		file:    f,
		records: make(map[int]diskRecordMeta),
		enc:     enc,
		dec:     dec,
	}
	if err := storage.loadIndex(); err != nil {
		storage.Close()
		return nil, err
	}
	return storage, nil
}

func (s *diskColumnStorage) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind chunk file: %w", err)
	}

	header := make([]byte, 9)
	var offset int64
	for {
		if _, err := io.ReadFull(s.file, header); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("truncated chunk header: %w", err)
			}
			return fmt.Errorf("read chunk header: %w", err)
		}
		op := header[0]
		index := int(binary.LittleEndian.Uint32(header[1:5]))
		size := binary.LittleEndian.Uint32(header[5:9])
		recordOffset := offset
		offset += int64(len(header)) + int64(size)

		if _, err := s.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}
		if op == diskOpSet {
			s.records[index] = diskRecordMeta{offset: recordOffset, size: size}
		} else {
			delete(s.records, index)
		}
	}

	return nil
}

func (s *diskColumnStorage) LoadColumn(index int) ([]voxel.Voxel, bool, error) {
	s.mu.RLock()
	meta, ok := s.records[index]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	header := make([]byte, 9)
	if _, err := s.file.ReadAt(header, meta.offset); err != nil {
		return nil, false, fmt.Errorf("read header at %d: %w", meta.offset, err)
	}
	if header[0] != diskOpSet {
		return nil, false, nil
	}
	size := binary.LittleEndian.Uint32(header[5:9])
	compressed := make([]byte, size)
	if _, err := s.file.ReadAt(compressed, meta.offset+int64(len(header))); err != nil {
		return nil, false, fmt.Errorf("read payload: %w", err)
	}
	payload, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress column: %w", err)
	}
	var column []voxel.Voxel
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&column); err != nil {
		return nil, false, fmt.Errorf("decode column: %w", err)
	}
	return column, true, nil
}

func (s *diskColumnStorage) SaveColumn(index int, column []voxel.Voxel) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(column); err != nil {
		return fmt.Errorf("encode column: %w", err)
	}
	compressed := s.enc.EncodeAll(payload.Bytes(), nil)

	header := make([]byte, 9)
	header[0] = diskOpSet
	binary.LittleEndian.PutUint32(header[1:5], uint32(index))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(compressed)))

	s.mu.Lock()
	defer s.mu.Unlock()

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek chunk end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.file.Write(compressed); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync chunk file: %w", err)
	}
	s.records[index] = diskRecordMeta{offset: offset, size: uint32(len(compressed))}
	return nil
}

func (s *diskColumnStorage) Delete(index int) error {
	header := make([]byte, 9)
	header[0] = diskOpDelete
	binary.LittleEndian.PutUint32(header[1:5], uint32(index))
	binary.LittleEndian.PutUint32(header[5:9], 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek chunk end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return fmt.Errorf("write delete header: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync chunk file: %w", err)
	}
	delete(s.records, index)
	return nil
}

func (s *diskColumnStorage) ForEach(fn func(index int, column []voxel.Voxel) bool) error {
	s.mu.RLock()
	indices := make([]int, 0, len(s.records))
	for idx := range s.records {
		indices = append(indices, idx)
	}
	s.mu.RUnlock()

	sort.Ints(indices)
	for _, idx := range indices {
		column, ok, err := s.LoadColumn(idx)
		if err != nil {
			log.Printf("disk column storage load index %d: %v", idx, err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(idx, column) {
			break
		}
	}
	return nil
}

func (s *diskColumnStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		s.enc.Close()
		s.enc = nil
	}
	if s.dec != nil {
		s.dec.Close()
		s.dec = nil
	}
	return s.file.Close()
}
